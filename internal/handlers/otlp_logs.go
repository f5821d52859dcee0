package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/api"
	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
	"github.com/tobilg/otlp-langfuse-bridge/internal/otlp"
	"github.com/tobilg/otlp-langfuse-bridge/internal/session"
)

// HandleLogs handles POST /v1/logs
func (h *Handlers) HandleLogs(w http.ResponseWriter, r *http.Request) {
	h.requestCount.Add(1)
	log := logger.Logger()

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorCount.Add(1)
		h.writeReadError(w, r, err, "logs")
		return
	}

	req, err := otlp.DecodeLogs(rawBody)
	if err != nil {
		h.errorCount.Add(1)
		log.Error("Failed to decode logs", "error", err)
		api.WriteErrorFromError(w, api.NewValidationError("", "failed to decode logs: "+err.Error()))
		return
	}

	var processed, skipped int
	now := time.Now()

	for _, rl := range req.GetResourceLogs() {
		for _, sl := range rl.GetScopeLogs() {
			for _, lr := range sl.GetLogRecords() {
				attrs := otlp.DecodeAttributes(lr.GetAttributes())
				ts := otlp.ResolveTimestamp(lr.GetTimeUnixNano(), attrs)
				id := otlp.ExtractIdentity(attrs)

				key, ok := session.DeriveKey(id, ts)
				if !ok {
					log.Debug("Skipping log record without session key")
					skipped++
					continue
				}

				sess := h.registry.GetOrCreate(key, id, now)
				sess.Touch()

				evt, ok := otlp.MapLogRecord(lr.GetBody().GetStringValue(), ts, attrs)
				if !ok {
					skipped++
					continue
				}

				sess.IngestEvent(evt)
				processed++
			}
		}
	}

	log.Debug("Processed log records", "processed", processed, "skipped", skipped)
	api.WritePartialSuccess(w)
}
