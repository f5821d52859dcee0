package handlers

import (
	"io"
	"net/http"

	"github.com/tobilg/otlp-langfuse-bridge/internal/api"
)

// HandleTraces handles POST /v1/traces. The client exports no span data the
// bridge projects, so the payload is drained and acknowledged.
func (h *Handlers) HandleTraces(w http.ResponseWriter, r *http.Request) {
	h.requestCount.Add(1)
	io.Copy(io.Discard, r.Body)
	api.WritePartialSuccess(w)
}
