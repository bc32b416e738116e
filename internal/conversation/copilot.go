package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nadine-ai/resubmission-copilot/internal/observability/metrics"
	"github.com/nadine-ai/resubmission-copilot/internal/policy"
	"github.com/nadine-ai/resubmission-copilot/internal/rejection"
	"github.com/nadine-ai/resubmission-copilot/internal/sfda"
	"github.com/nadine-ai/resubmission-copilot/internal/visits"
	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

// Copilot composes the visit source, policy resolver, and conversation
// manager into the two operations the claims team uses: grounded chat and
// one-shot justification drafting.
type Copilot struct {
	source   visits.Source
	resolver *policy.Resolver
	manager  *Manager
	registry *sfda.Registry
	metrics  *metrics.CopilotMetrics
	logger   *logging.Logger
}

// NewCopilot wires the copilot service. registry and m may be nil; the
// drug-code path then always reports "not found" and metrics are skipped.
func NewCopilot(source visits.Source, resolver *policy.Resolver, manager *Manager, registry *sfda.Registry, m *metrics.CopilotMetrics, logger *logging.Logger) *Copilot {
	if source == nil {
		panic("conversation: visit source cannot be nil")
	}
	if resolver == nil {
		panic("conversation: policy resolver cannot be nil")
	}
	if manager == nil {
		panic("conversation: manager cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Copilot{
		source:   source,
		resolver: resolver,
		manager:  manager,
		registry: registry,
		metrics:  m,
		logger:   logger,
	}
}

// VisitContext is the resolved grounding for one visit. Exactly one of
// three shapes reaches callers: full match (Policy and Detail set), policy
// without tier (AvailableLevels set), or nothing matched. A visit with no
// rejection rows has empty Rows.
type VisitContext struct {
	VisitID         string
	Rows            []visits.Row
	TierLabel       string
	Policy          *policy.Policy
	Detail          *policy.CoverageDetail
	AvailableLevels []string
}

// HasRejections reports whether the visit carries any rejected services.
func (vc *VisitContext) HasRejections() bool { return len(vc.Rows) > 0 }

// Resolved reports whether both policy and coverage tier were found.
func (vc *VisitContext) Resolved() bool { return vc.Detail != nil }

// ResolveVisit loads the visit's rejected services and resolves the
// applicable policy and coverage tier.
func (c *Copilot) ResolveVisit(ctx context.Context, visitID string) (*VisitContext, error) {
	rows, err := c.source.VisitRejections(ctx, visitID)
	if err != nil {
		return nil, err
	}
	vc := &VisitContext{VisitID: visitID, Rows: rows}
	if len(rows) == 0 {
		return vc, nil
	}

	vc.TierLabel = visits.TierLabel(rows)
	match, err := c.resolver.Resolve(ctx, rows[0].PolicyNumber, rows[0].PolicyNumber2, vc.TierLabel)
	if err != nil {
		return nil, err
	}
	vc.Policy = match.Policy
	vc.Detail = match.Detail
	vc.AvailableLevels = match.AvailableLevels

	switch {
	case match.Detail != nil:
		c.metrics.ObserveResolution(metrics.ResolutionMatched)
	case match.Policy != nil:
		c.metrics.ObserveResolution(metrics.ResolutionTierNotMatched)
	default:
		c.metrics.ObserveResolution(metrics.ResolutionPolicyNotFound)
	}
	return vc, nil
}

// Chat answers a team member's question grounded in the visit's resolved
// coverage detail. The visit context must be fully resolved.
func (c *Copilot) Chat(ctx context.Context, threadID string, vc *VisitContext, message string) (string, error) {
	if !vc.Resolved() {
		return "", fmt.Errorf("conversation: chat requires a resolved visit context")
	}

	start := time.Now()
	text, err := c.manager.AppendAndRespond(ctx, threadID, c.seedFor(vc), message)
	if err != nil {
		c.metrics.ObserveGenerationError()
		return "", err
	}
	c.metrics.ObserveGeneration("chat", time.Since(start).Seconds())

	visible, trace := SplitReasoning(text)
	if trace != "" {
		c.logger.Debug("model reasoning trace", "thread_id", threadID, "trace", trace)
	}
	return visible, nil
}

// JustifyResult is the outcome of a justification request.
type JustifyResult struct {
	Text       string                   `json:"text"`
	Category   rejection.ReasonCategory `json:"category"`
	Classified bool                     `json:"classified"`
	// Deterministic is true when the text came from the SFDA drug list
	// rather than the model.
	Deterministic bool `json:"deterministic,omitempty"`
}

// ErrInvalidServiceIndex marks a justification request that names a
// service the visit does not have. Callers report it as an input fault.
var ErrInvalidServiceIndex = errors.New("conversation: service index out of range")

// JustifyService drafts resubmission justification text for one rejected
// service of the visit. An unclassifiable rejection reason is an ordinary
// outcome (Classified=false), never a guess at a category.
func (c *Copilot) JustifyService(ctx context.Context, threadID string, vc *VisitContext, serviceIndex int) (*JustifyResult, error) {
	if !vc.Resolved() {
		return nil, fmt.Errorf("conversation: justify requires a resolved visit context")
	}
	if serviceIndex < 0 || serviceIndex >= len(vc.Rows) {
		return nil, fmt.Errorf("%w: %d (visit has %d services)", ErrInvalidServiceIndex, serviceIndex, len(vc.Rows))
	}
	row := vc.Rows[serviceIndex]

	category, ok := rejection.NormalizeReasonText(row.RejectionReason)
	c.metrics.ObserveReason(category.String())
	if !ok {
		c.logger.Info("rejection reason unclassifiable",
			"visit_id", vc.VisitID,
			"service", row.ServiceName,
		)
		return &JustifyResult{Category: rejection.Unclassified}, nil
	}

	if category == rejection.DrugCodeNotFound {
		return &JustifyResult{
			Text:          c.drugCodeAnswer(row),
			Category:      category,
			Classified:    true,
			Deterministic: true,
		}, nil
	}

	instruction := justificationInstruction
	if guidance, ok := CategoryGuidance(category); ok {
		instruction = instruction + "\n" + guidance
	}

	start := time.Now()
	text, err := c.manager.Justify(ctx, threadID, c.seedFor(vc), instruction, c.claimInfo(row))
	if err != nil {
		c.metrics.ObserveGenerationError()
		return nil, err
	}
	c.metrics.ObserveGeneration("justify", time.Since(start).Seconds())

	visible, trace := SplitReasoning(text)
	if trace != "" {
		c.logger.Debug("model reasoning trace", "thread_id", threadID, "trace", trace)
	}
	return &JustifyResult{Text: visible, Category: category, Classified: true}, nil
}

func (c *Copilot) seedFor(vc *VisitContext) SeedContext {
	return SeedContext{
		SystemPrompt: assistantSystemPrompt,
		PolicyText:   vc.Detail.PromptText(),
		VisitText:    visits.PromptText(vc.Rows),
	}
}

// claimInfo serializes the rejected service plus the names of any drug
// codes the rejection text references, so the model can argue about the
// actual medications instead of bare codes.
func (c *Copilot) claimInfo(row visits.Row) string {
	var b strings.Builder
	b.WriteString(row.ServiceText())

	for _, code := range rejection.ExtractDrugCodes(row.RejectionReason) {
		if name := c.registry.NameByCode(code); name != "" {
			fmt.Fprintf(&b, "Drug %s referenced by the insurer: %s\n", code, name)
		}
	}
	return b.String()
}

// drugCodeAnswer resolves DrugCodeNotFound rejections from the SFDA list
// without a model call.
func (c *Copilot) drugCodeAnswer(row visits.Row) string {
	codes := rejection.ExtractDrugCodes(row.RejectionReason)
	for _, code := range codes {
		if rec, ok := c.registry.Lookup(code); ok {
			return fmt.Sprintf("Drug code %s exists in the SFDA drug list under %s.", code, rec)
		}
	}
	return "Drug code was not found in the SFDA drug list, please consider revising this code."
}
