package handlers

import (
	"net/http"

	"github.com/tobilg/otlp-langfuse-bridge/internal/websocket"
)

// HandleWebSocket handles GET /ws, upgrading to the live session feed
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, w, r)
}
