package handlers

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/api"
	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
	"github.com/tobilg/otlp-langfuse-bridge/internal/session"
	"github.com/tobilg/otlp-langfuse-bridge/internal/websocket"
)

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	registry *session.Registry
	hub      *websocket.Hub

	langfuseConfigured bool
	startTime          time.Time

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// New creates a new Handlers instance
func New(registry *session.Registry, hub *websocket.Hub, langfuseConfigured bool) *Handlers {
	return &Handlers{
		registry:           registry,
		hub:                hub,
		langfuseConfigured: langfuseConfigured,
		startTime:          time.Now(),
	}
}

// CountRejected records a request turned away by middleware before it
// reached a handler, keeping /health counters accurate
func (h *Handlers) CountRejected() {
	h.requestCount.Add(1)
	h.errorCount.Add(1)
}

// writeReadError answers a body-read failure. Chunked bodies that trip the
// size limit surface here as a MaxBytesError and get 413 like any other
// oversized request; everything else is a plain 400.
func (h *Handlers) writeReadError(w http.ResponseWriter, r *http.Request, err error, signal string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		logger.Warn("Request body exceeds size limit", "signal", signal, "limit", maxErr.Limit)
		api.WriteErrorFromError(w, api.NewPayloadTooLargeError(maxErr.Limit, r.ContentLength))
		return
	}
	logger.Error("Failed to read request body", "signal", signal, "error", err)
	api.WriteError(w, http.StatusBadRequest, "failed to read body")
}
