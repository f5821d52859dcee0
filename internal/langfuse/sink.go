package langfuse

import (
	"context"
	"time"
)

// Observation levels understood by the Langfuse API
const (
	LevelDefault = "DEFAULT"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// Usage carries token accounting for a generation
type Usage struct {
	Input  int64  `json:"input"`
	Output int64  `json:"output"`
	Total  int64  `json:"total"`
	Unit   string `json:"unit"`
}

// Generation describes a single model invocation observation
type Generation struct {
	Name      string
	Model     string
	StartTime time.Time
	EndTime   time.Time
	Usage     Usage
	Metadata  map[string]any
}

// Event describes a point-in-time observation under a trace
type Event struct {
	Name      string
	Timestamp time.Time
	Input     map[string]any
	Output    map[string]any
	Metadata  map[string]any
	Level     string
}

// Sink is the outbound boundary to the observability backend. All calls are
// non-blocking and best-effort; implementations must never propagate
// transport failures to the caller. Flush completes when buffered entities
// are delivered or abandoned.
type Sink interface {
	Trace(name, sessionID string, input, output, metadata map[string]any) string
	Generation(traceID string, g Generation)
	Event(traceID string, e Event)
	Score(traceID, name string, value float64, comment string)
	Flush(ctx context.Context) error
}
