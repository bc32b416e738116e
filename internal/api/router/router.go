package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nadine-ai/resubmission-copilot/internal/conversation"
	httpmiddleware "github.com/nadine-ai/resubmission-copilot/internal/http/middleware"
	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	CopilotHandler *conversation.Handler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.CopilotHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/visits", func(r chi.Router) {
		r.Get("/", cfg.CopilotHandler.VisitIDs)
		r.Get("/{visitID}/policy", cfg.CopilotHandler.VisitPolicy)
	})
	r.Get("/policies/summary", cfg.CopilotHandler.PolicySummary)
	r.Post("/chat", cfg.CopilotHandler.Chat)
	r.Post("/justify", cfg.CopilotHandler.Justify)

	return r
}
