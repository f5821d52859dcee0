package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/tobilg/otlp-langfuse-bridge/internal/handlers"
	appMiddleware "github.com/tobilg/otlp-langfuse-bridge/internal/middleware"
)

func (s *Server) setupRoutes(h *handlers.Handlers) {
	// OTLP ingestion endpoints; bearer auth applies when API_KEY is set
	s.router.Route("/v1", func(r chi.Router) {
		r.Use(appMiddleware.BearerAuthMiddleware(s.config.APIKey))
		r.Post("/traces", h.HandleTraces)
		r.Post("/metrics", h.HandleMetrics)
		r.Post("/logs", h.HandleLogs)
	})

	// Health check
	s.router.Get("/health", h.Health)

	// WebSocket for the live session feed
	s.router.Get("/ws", h.HandleWebSocket)
}
