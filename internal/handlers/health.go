package handlers

import (
	"net/http"
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/api"
)

// HealthResponse is the GET /health body
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Sessions     int    `json:"sessions"`
	RequestCount int64  `json:"requestCount"`
	ErrorCount   int64  `json:"errorCount"`
	Langfuse     string `json:"langfuse"`
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	langfuse := "connected"
	if !h.langfuseConfigured {
		langfuse = "disabled"
	}

	api.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:       "healthy",
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Sessions:     h.registry.Len(),
		RequestCount: h.requestCount.Load(),
		ErrorCount:   h.errorCount.Load(),
		Langfuse:     langfuse,
	})
}
