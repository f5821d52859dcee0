package otlp

import (
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
)

// Log record bodies emitted by the Claude Code telemetry client
const (
	bodyUserPrompt   = "claude_code.user_prompt"
	bodyAPIRequest   = "claude_code.api_request"
	bodyAPIError     = "claude_code.api_error"
	bodyToolResult   = "claude_code.tool_result"
	bodyToolDecision = "claude_code.tool_decision"
)

// EventKind classifies a recognized client log record
type EventKind string

const (
	EventUserPrompt   EventKind = "user_prompt"
	EventAPIRequest   EventKind = "api_request"
	EventAPIError     EventKind = "api_error"
	EventToolResult   EventKind = "tool_result"
	EventToolDecision EventKind = "tool_decision"
)

// Event is a normalized client log record. Only the fields relevant to the
// record's kind are populated; missing attributes are defaulted (names to
// "unknown", numbers to 0, bools to false, free-text fields to "").
type Event struct {
	Kind      EventKind
	Timestamp time.Time

	// user_prompt
	Prompt       string
	PromptLength int64

	// api_request
	Model               string
	InputTokens         int64
	OutputTokens        int64
	CacheReadTokens     int64
	CacheCreationTokens int64
	CostUSD             float64
	DurationMs          int64
	RequestID           string

	// api_error
	ErrorMessage string
	StatusCode   int64

	// tool_result / tool_decision
	ToolName string
	Success  bool
	Decision string
	Source   string
}

// Identity holds the standard attributes that identify a session's owner
type Identity struct {
	SessionID       string
	OrganizationID  string
	UserAccountUUID string
	UserEmail       string
	TerminalType    string
	AppVersion      string
}

// ExtractIdentity pulls the standard identity attributes from a record's bag
func ExtractIdentity(attrs map[string]any) Identity {
	return Identity{
		SessionID:       stringAttr(attrs, "session.id", ""),
		OrganizationID:  stringAttr(attrs, "organization.id", ""),
		UserAccountUUID: stringAttr(attrs, "user.account_uuid", ""),
		UserEmail:       stringAttr(attrs, "user.email", ""),
		TerminalType:    stringAttr(attrs, "terminal.type", ""),
		AppVersion:      stringAttr(attrs, "app.version", ""),
	}
}

// ResolveTimestamp picks a record's effective timestamp: the event.timestamp
// attribute (ISO-8601, as emitted by the client) overrides the OTLP nanos
// when present and parsable.
func ResolveTimestamp(timeUnixNano uint64, attrs map[string]any) time.Time {
	if raw, ok := attrs["event.timestamp"].(string); ok && raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Unix(0, int64(timeUnixNano))
}

// MapLogRecord classifies a client log record into a domain event.
// Unknown bodies are ignored with a debug log and return (nil, false).
func MapLogRecord(body string, ts time.Time, attrs map[string]any) (*Event, bool) {
	switch body {
	case bodyUserPrompt:
		return &Event{
			Kind:         EventUserPrompt,
			Timestamp:    ts,
			Prompt:       stringAttr(attrs, "prompt", ""),
			PromptLength: intAttr(attrs, "prompt_length"),
		}, true

	case bodyAPIRequest:
		return &Event{
			Kind:                EventAPIRequest,
			Timestamp:           ts,
			Model:               stringAttr(attrs, "model", "unknown"),
			InputTokens:         intAttr(attrs, "input_tokens"),
			OutputTokens:        intAttr(attrs, "output_tokens"),
			CacheReadTokens:     intAttr(attrs, "cache_read_tokens"),
			CacheCreationTokens: intAttr(attrs, "cache_creation_tokens"),
			CostUSD:             floatAttr(attrs, "cost_usd"),
			DurationMs:          intAttr(attrs, "duration_ms"),
			RequestID:           stringAttr(attrs, "request_id", ""),
		}, true

	case bodyAPIError:
		return &Event{
			Kind:         EventAPIError,
			Timestamp:    ts,
			Model:        stringAttr(attrs, "model", "unknown"),
			ErrorMessage: stringAttr(attrs, "error_message", "unknown"),
			StatusCode:   intAttr(attrs, "status_code"),
			RequestID:    stringAttr(attrs, "request_id", ""),
		}, true

	case bodyToolResult:
		return &Event{
			Kind:       EventToolResult,
			Timestamp:  ts,
			ToolName:   stringAttr(attrs, "tool_name", "unknown"),
			Success:    boolAttr(attrs, "success"),
			DurationMs: intAttr(attrs, "duration_ms"),
		}, true

	case bodyToolDecision:
		return &Event{
			Kind:      EventToolDecision,
			Timestamp: ts,
			ToolName:  stringAttr(attrs, "tool_name", "unknown"),
			Decision:  stringAttr(attrs, "decision", "unknown"),
			Source:    stringAttr(attrs, "source", "unknown"),
		}, true

	default:
		logger.Debug("Ignoring unrecognized log record body", "body", body)
		return nil, false
	}
}
