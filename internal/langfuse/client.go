package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
)

const (
	ingestionPath = "/api/public/ingestion"

	// Batching knobs for the background dispatcher
	maxBatchSize  = 100
	flushInterval = 2 * time.Second

	// Queue capacity; enqueue never blocks, overflow is dropped and logged
	queueSize = 4096
)

// Client ships backend entities to the Langfuse batch ingestion API from a
// single background dispatcher, which keeps per-trace call order intact.
type Client struct {
	host       string
	publicKey  string
	secretKey  string
	enabled    bool
	httpClient *http.Client
	queue      chan queued
}

// queued is either an ingestion event or a flush barrier (ack != nil)
type queued struct {
	event *ingestionEvent
	ack   chan struct{}
}

// ingestionEvent is one entry of an ingestion batch request
type ingestionEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Body      map[string]any `json:"body"`
}

// NewClient creates a Langfuse ingestion client and starts its dispatcher.
// With empty credentials the client runs disabled: entities are accepted and
// discarded, which keeps the bridge usable without a backend account.
func NewClient(host, publicKey, secretKey string) *Client {
	c := &Client{
		host:      host,
		publicKey: publicKey,
		secretKey: secretKey,
		enabled:   publicKey != "" && secretKey != "",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		queue: make(chan queued, queueSize),
	}

	if !c.enabled {
		logger.Warn("Langfuse credentials not configured, entities will be discarded")
	}

	go c.dispatch()
	return c
}

// Trace creates a trace and returns its handle immediately
func (c *Client) Trace(name, sessionID string, input, output, metadata map[string]any) string {
	traceID := uuid.NewString()

	body := map[string]any{
		"id":        traceID,
		"name":      name,
		"sessionId": sessionID,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if input != nil {
		body["input"] = input
	}
	if output != nil {
		body["output"] = output
	}
	if metadata != nil {
		body["metadata"] = metadata
	}

	c.enqueue("trace-create", body)
	return traceID
}

// Generation records a model invocation under a trace
func (c *Client) Generation(traceID string, g Generation) {
	body := map[string]any{
		"id":        uuid.NewString(),
		"traceId":   traceID,
		"model":     g.Model,
		"startTime": g.StartTime.UTC().Format(time.RFC3339Nano),
		"endTime":   g.EndTime.UTC().Format(time.RFC3339Nano),
		"usage":     g.Usage,
	}
	if g.Name != "" {
		body["name"] = g.Name
	}
	if g.Metadata != nil {
		body["metadata"] = g.Metadata
	}

	c.enqueue("generation-create", body)
}

// Event records a point-in-time observation under a trace
func (c *Client) Event(traceID string, e Event) {
	body := map[string]any{
		"id":        uuid.NewString(),
		"traceId":   traceID,
		"name":      e.Name,
		"startTime": e.Timestamp.UTC().Format(time.RFC3339Nano),
		"level":     e.Level,
	}
	if e.Input != nil {
		body["input"] = e.Input
	}
	if e.Output != nil {
		body["output"] = e.Output
	}
	if e.Metadata != nil {
		body["metadata"] = e.Metadata
	}

	c.enqueue("event-create", body)
}

// Score attaches a numeric score to a trace
func (c *Client) Score(traceID, name string, value float64, comment string) {
	body := map[string]any{
		"id":       uuid.NewString(),
		"traceId":  traceID,
		"name":     name,
		"value":    value,
		"dataType": "NUMERIC",
	}
	if comment != "" {
		body["comment"] = comment
	}

	c.enqueue("score-create", body)
}

// Flush waits until everything enqueued before the call has been posted or
// abandoned, bounded by the context deadline.
func (c *Client) Flush(ctx context.Context) error {
	ack := make(chan struct{})

	select {
	case c.queue <- queued{ack: ack}:
	case <-ctx.Done():
		return fmt.Errorf("enqueueing flush barrier: %w", ctx.Err())
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for flush: %w", ctx.Err())
	}
}

func (c *Client) enqueue(eventType string, body map[string]any) {
	ev := &ingestionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body:      body,
	}

	select {
	case c.queue <- queued{event: ev}:
	default:
		logger.Warn("Langfuse queue full, dropping entity", "type", eventType)
	}
}

// dispatch batches queued events and posts them in arrival order
func (c *Client) dispatch() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var batch []*ingestionEvent

	for {
		select {
		case q := <-c.queue:
			if q.ack != nil {
				c.post(batch)
				batch = nil
				close(q.ack)
				continue
			}
			batch = append(batch, q.event)
			if len(batch) >= maxBatchSize {
				c.post(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				c.post(batch)
				batch = nil
			}
		}
	}
}

// post delivers one batch. Failures are logged and swallowed; the bridge
// never retries and never surfaces backend errors to ingest.
func (c *Client) post(batch []*ingestionEvent) {
	if len(batch) == 0 || !c.enabled {
		return
	}

	payload, err := json.Marshal(map[string]any{"batch": batch})
	if err != nil {
		logger.Error("Failed to marshal ingestion batch", "error", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, c.host+ingestionPath, bytes.NewReader(payload))
	if err != nil {
		logger.Error("Failed to build ingestion request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Langfuse ingestion request failed", "error", err, "batch_size", len(batch))
		return
	}
	defer resp.Body.Close()

	// 207 is the API's partial-success response; treat like 2xx
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		logger.Warn("Langfuse ingestion rejected",
			"status", resp.StatusCode,
			"body", string(respBody),
			"batch_size", len(batch),
		)
		return
	}

	logger.Debug("Delivered ingestion batch", "batch_size", len(batch))
}
