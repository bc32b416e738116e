package conversation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nadine-ai/resubmission-copilot/internal/policy"
	"github.com/nadine-ai/resubmission-copilot/internal/visits"
	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

// Handler wires HTTP requests to the copilot service.
type Handler struct {
	copilot *Copilot
	source  visits.Source
	store   policy.Store
	logger  *logging.Logger
}

// NewHandler creates the copilot HTTP handler.
func NewHandler(copilot *Copilot, source visits.Source, store policy.Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{copilot: copilot, source: source, store: store, logger: logger}
}

// VisitIDs handles GET /visits?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) VisitIDs(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		http.Error(w, "from and to query parameters are required", http.StatusBadRequest)
		return
	}

	ids, err := h.source.VisitIDsBetween(r.Context(), from, to)
	if err != nil {
		h.writeError(w, "failed to list visits", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"visit_ids": ids})
}

// VisitPolicy handles GET /visits/{visitID}/policy.
func (h *Handler) VisitPolicy(w http.ResponseWriter, r *http.Request) {
	visitID := chi.URLParam(r, "visitID")

	vc, err := h.copilot.ResolveVisit(r.Context(), visitID)
	if err != nil {
		h.writeError(w, "failed to resolve visit", err)
		return
	}

	if outcome, status := resolutionOutcome(vc); outcome != nil {
		h.writeJSON(w, status, outcome)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"visit_id":   vc.VisitID,
		"tier_label": vc.TierLabel,
		"policy": map[string]any{
			"policy_number":  vc.Policy.PolicyNumber,
			"company_name":   vc.Policy.CompanyName,
			"policy_holder":  vc.Policy.PolicyHolder,
			"effective_from": vc.Policy.EffectiveFrom,
			"effective_to":   vc.Policy.EffectiveTo,
		},
		"detail":   vc.Detail,
		"services": vc.Rows,
	})
}

type chatRequest struct {
	ThreadID string `json:"thread_id"`
	VisitID  string `json:"visit_id"`
	Message  string `json:"message"`
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VisitID == "" || req.Message == "" {
		http.Error(w, "visit_id and message are required", http.StatusBadRequest)
		return
	}
	if req.ThreadID == "" {
		req.ThreadID = uuid.NewString()
	}

	vc, err := h.copilot.ResolveVisit(r.Context(), req.VisitID)
	if err != nil {
		h.writeError(w, "failed to resolve visit", err)
		return
	}
	if outcome, status := resolutionOutcome(vc); outcome != nil {
		h.writeJSON(w, status, outcome)
		return
	}

	answer, err := h.copilot.Chat(r.Context(), req.ThreadID, vc, req.Message)
	if err != nil {
		h.writeError(w, "chat failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"thread_id": req.ThreadID,
		"answer":    answer,
	})
}

type justifyRequest struct {
	ThreadID     string `json:"thread_id"`
	VisitID      string `json:"visit_id"`
	ServiceIndex int    `json:"service_index"`
}

// Justify handles POST /justify.
func (h *Handler) Justify(w http.ResponseWriter, r *http.Request) {
	var req justifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VisitID == "" {
		http.Error(w, "visit_id is required", http.StatusBadRequest)
		return
	}
	if req.ThreadID == "" {
		req.ThreadID = uuid.NewString()
	}

	vc, err := h.copilot.ResolveVisit(r.Context(), req.VisitID)
	if err != nil {
		h.writeError(w, "failed to resolve visit", err)
		return
	}
	if outcome, status := resolutionOutcome(vc); outcome != nil {
		h.writeJSON(w, status, outcome)
		return
	}

	result, err := h.copilot.JustifyService(r.Context(), req.ThreadID, vc, req.ServiceIndex)
	if err != nil {
		h.writeError(w, "justification failed", err)
		return
	}
	if !result.Classified {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"outcome": "unclassifiable_reason",
			"message": "the rejection reason matched no known category; draft the justification manually",
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"thread_id": req.ThreadID,
		"result":    result,
	})
}

// PolicySummary handles GET /policies/summary.
func (h *Handler) PolicySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := policy.Summarize(r.Context(), h.store, time.Now().UTC())
	if err != nil {
		h.writeError(w, "failed to summarize policies", err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolutionOutcome maps the three-way resolution result to a JSON body
// for the two miss shapes. Misses are ordinary outcomes: the caller needs
// the available tiers, not a stack trace.
func resolutionOutcome(vc *VisitContext) (map[string]any, int) {
	if !vc.HasRejections() {
		return map[string]any{
			"outcome": "no_rejections",
			"message": "no claim rejections were found for this visit",
		}, http.StatusNotFound
	}
	if vc.Policy == nil {
		return map[string]any{
			"outcome": "policy_not_found",
			"message": "no policy matched either policy number of this visit",
		}, http.StatusNotFound
	}
	if vc.Detail == nil {
		return map[string]any{
			"outcome":          "tier_not_matched",
			"message":          "no coverage information found for this patient's class",
			"tier_label":       vc.TierLabel,
			"available_levels": vc.AvailableLevels,
		}, http.StatusNotFound
	}
	return nil, 0
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	switch {
	case errors.Is(err, ErrInvalidServiceIndex):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, visits.ErrSourceUnavailable), errors.Is(err, policy.ErrStoreUnavailable):
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "a backing service is unavailable, please try again later",
		})
	case errors.Is(err, ErrGeneration):
		h.writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "the assistant is temporarily unavailable, please retry",
		})
	default:
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
