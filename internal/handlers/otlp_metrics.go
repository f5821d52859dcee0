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

// HandleMetrics handles POST /v1/metrics
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.requestCount.Add(1)
	log := logger.Logger()

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorCount.Add(1)
		h.writeReadError(w, r, err, "metrics")
		return
	}

	req, err := otlp.DecodeMetrics(rawBody)
	if err != nil {
		h.errorCount.Add(1)
		log.Error("Failed to decode metrics", "error", err)
		api.WriteErrorFromError(w, api.NewValidationError("", "failed to decode metrics: "+err.Error()))
		return
	}

	var processed, skipped int
	now := time.Now()

	for _, rm := range req.GetResourceMetrics() {
		for _, sm := range rm.GetScopeMetrics() {
			for _, m := range sm.GetMetrics() {
				for _, dp := range otlp.NumberDataPoints(m) {
					attrs := otlp.DecodeAttributes(dp.GetAttributes())
					ts := otlp.ResolveTimestamp(dp.GetTimeUnixNano(), attrs)
					id := otlp.ExtractIdentity(attrs)

					key, ok := session.DeriveKey(id, ts)
					if !ok {
						log.Debug("Skipping datapoint without session key", "metric", m.GetName())
						skipped++
						continue
					}

					sess := h.registry.GetOrCreate(key, id, now)
					sess.Touch()

					sample, ok := otlp.MapDataPoint(m.GetName(), ts, otlp.NumberValue(dp), attrs)
					if !ok {
						skipped++
						continue
					}

					sess.IngestMetric(sample)
					processed++
				}
			}
		}
	}

	log.Debug("Processed metric datapoints", "processed", processed, "skipped", skipped)
	api.WritePartialSuccess(w)
}
