package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/langfuse"
	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
	"github.com/tobilg/otlp-langfuse-bridge/internal/otlp"
)

// costDedupWindow bounds how long an event-reported cost suppresses the
// metric-reported cost for the same model, avoiding double counting.
const costDedupWindow = 2 * time.Second

// Tokens groups the four token counters the client reports
type Tokens struct {
	Input         int64
	Output        int64
	CacheRead     int64
	CacheCreation int64
}

// Total sums all four counters
func (t Tokens) Total() int64 {
	return t.Input + t.Output + t.CacheRead + t.CacheCreation
}

// ToolDecision is one accepted/rejected tool invocation, recorded from
// either the tool_decision event or the code_edit_tool.decision metric
type ToolDecision struct {
	Tool      string    `json:"tool"`
	Decision  string    `json:"decision"`
	Source    string    `json:"source,omitempty"`
	Language  string    `json:"language,omitempty"`
	Count     float64   `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session owns all mutable state for one session key. Every mutation runs
// under the session's own lock; sink calls made while holding it are
// non-blocking by the Sink contract.
type Session struct {
	mu sync.Mutex

	key      string
	identity otlp.Identity
	sink     langfuse.Sink
	notifier Notifier

	created      time.Time
	lastActivity time.Time
	finalized    bool
	started      bool

	// Conversation state
	conversationIndex int
	currentTrace      string

	// Aggregates
	totalCostUSD   float64
	tokens         Tokens
	perModelTokens map[string]*Tokens
	perModelCost   map[string]float64
	linesAdded     int64
	linesRemoved   int64
	commitCount    int64
	prCount        float64
	activeTimeSecs float64
	toolDecisions  []ToolDecision
	toolResults    int64
	apiErrors      int64
	apiCalls       int64

	// Cost double-count guard and pr-metric alias tracking
	lastEventCost map[string]time.Time
	lastPrMetric  map[string]time.Time
}

func newSession(key string, id otlp.Identity, sink langfuse.Sink, notifier Notifier, now time.Time) *Session {
	return &Session{
		key:            key,
		identity:       id,
		sink:           sink,
		notifier:       notifier,
		created:        now,
		lastActivity:   now,
		perModelTokens: make(map[string]*Tokens),
		perModelCost:   make(map[string]float64),
		lastEventCost:  make(map[string]time.Time),
		lastPrMetric:   make(map[string]time.Time),
	}
}

// Key returns the session key
func (s *Session) Key() string {
	return s.key
}

// Touch records activity, deferring idle finalization
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity returns the time of the most recent ingest
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// MergeIdentity fills identity fields first-write-wins. Conflicting values
// on an already-populated field are ignored and logged at debug.
func (s *Session) MergeIdentity(id otlp.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merge := func(field string, current *string, incoming string) {
		if incoming == "" {
			return
		}
		if *current == "" {
			*current = incoming
			return
		}
		if *current != incoming {
			logger.Debug("Ignoring conflicting identity attribute",
				"session", s.key, "field", field, "current", *current, "incoming", incoming)
		}
	}

	merge("organization.id", &s.identity.OrganizationID, id.OrganizationID)
	merge("user.account_uuid", &s.identity.UserAccountUUID, id.UserAccountUUID)
	merge("user.email", &s.identity.UserEmail, id.UserEmail)
	merge("terminal.type", &s.identity.TerminalType, id.TerminalType)
	merge("app.version", &s.identity.AppVersion, id.AppVersion)
}

// IngestEvent applies one domain event: aggregates, conversation
// transitions, and backend entity creation
func (s *Session) IngestEvent(evt *otlp.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return
	}

	switch evt.Kind {
	case otlp.EventUserPrompt:
		s.openConversation(evt.Prompt, evt.PromptLength)

	case otlp.EventAPIRequest:
		s.ingestAPIRequest(evt)

	case otlp.EventAPIError:
		s.apiErrors++
		s.emitEvent(langfuse.Event{
			Name:      "api-error",
			Timestamp: evt.Timestamp,
			Input: map[string]any{
				"model":     evt.Model,
				"requestId": evt.RequestID,
			},
			Output: map[string]any{
				"error":      evt.ErrorMessage,
				"statusCode": evt.StatusCode,
			},
			Level: langfuse.LevelError,
		})

	case otlp.EventToolResult:
		s.toolResults++
		s.emitEvent(langfuse.Event{
			Name:      "tool-" + evt.ToolName,
			Timestamp: evt.Timestamp,
			Output: map[string]any{
				"success":    evt.Success,
				"durationMs": evt.DurationMs,
			},
			Level: langfuse.LevelDefault,
		})

	case otlp.EventToolDecision:
		s.toolDecisions = append(s.toolDecisions, ToolDecision{
			Tool:      evt.ToolName,
			Decision:  evt.Decision,
			Source:    evt.Source,
			Timestamp: evt.Timestamp,
		})
		level := langfuse.LevelDefault
		if evt.Decision != "accept" {
			level = langfuse.LevelWarning
		}
		s.emitEvent(langfuse.Event{
			Name:      "tool-decision",
			Timestamp: evt.Timestamp,
			Input: map[string]any{
				"toolName": evt.ToolName,
				"decision": evt.Decision,
				"source":   evt.Source,
			},
			Level: level,
		})
	}
}

// openConversation starts conversation N+1 and makes its trace current.
// The previous trace is left as-is on the backend.
func (s *Session) openConversation(prompt string, promptLength int64) {
	s.conversationIndex++
	name := conversationName(s.conversationIndex)

	s.currentTrace = s.sink.Trace(name, s.key,
		map[string]any{"prompt": prompt, "length": promptLength},
		nil,
		s.identityMetadata(),
	)
	s.notifier.ConversationOpened(s.key, name)
}

func (s *Session) ingestAPIRequest(evt *otlp.Event) {
	// A generation needs a parent conversation; requests arriving before
	// any user prompt open a synthetic one
	if s.currentTrace == "" {
		s.openConversation("", 0)
	}

	s.sink.Generation(s.currentTrace, langfuse.Generation{
		Model:     evt.Model,
		StartTime: evt.Timestamp,
		EndTime:   evt.Timestamp.Add(time.Duration(evt.DurationMs) * time.Millisecond),
		Usage: langfuse.Usage{
			Input:  evt.InputTokens,
			Output: evt.OutputTokens,
			Total:  evt.InputTokens + evt.OutputTokens,
			Unit:   "TOKENS",
		},
		Metadata: map[string]any{
			"cost": evt.CostUSD,
			"cache": map[string]any{
				"read":     evt.CacheReadTokens,
				"creation": evt.CacheCreationTokens,
			},
			"requestId": evt.RequestID,
		},
	})

	s.apiCalls++
	s.addTokens(evt.Model, Tokens{
		Input:         evt.InputTokens,
		Output:        evt.OutputTokens,
		CacheRead:     evt.CacheReadTokens,
		CacheCreation: evt.CacheCreationTokens,
	})

	if evt.CostUSD > 0 {
		s.totalCostUSD += evt.CostUSD
		s.perModelCost[evt.Model] += evt.CostUSD
		// Event-derived cost is authoritative; remember it so the metric
		// variant for this model is not counted again
		s.lastEventCost[evt.Model] = evt.Timestamp
	}
}

// IngestMetric applies one metric sample to the aggregates
func (s *Session) IngestMetric(sample *otlp.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return
	}

	switch sample.Kind {
	case otlp.SampleCost:
		if last, ok := s.lastEventCost[sample.Model]; ok && absDuration(sample.Timestamp.Sub(last)) < costDedupWindow {
			logger.Debug("Skipping metric cost already counted from api_request",
				"session", s.key, "model", sample.Model, "value", sample.Value)
			return
		}
		s.totalCostUSD += sample.Value
		s.perModelCost[sample.Model] += sample.Value

	case otlp.SampleTokens:
		var t Tokens
		switch sample.Type {
		case "input":
			t.Input = int64(sample.Value)
		case "output":
			t.Output = int64(sample.Value)
		case "cacheRead":
			t.CacheRead = int64(sample.Value)
		case "cacheCreation":
			t.CacheCreation = int64(sample.Value)
		default:
			logger.Debug("Ignoring token metric with unknown type",
				"session", s.key, "type", sample.Type)
			return
		}
		s.addTokens(sample.Model, t)

	case otlp.SampleLinesOfCode:
		switch sample.Type {
		case "added":
			s.linesAdded += int64(sample.Value)
		case "removed":
			s.linesRemoved += int64(sample.Value)
		}

	case otlp.SampleCommits:
		s.commitCount += int64(sample.Value)

	case otlp.SamplePullRequests:
		s.notePrAlias(sample)
		s.prCount += sample.Value

	case otlp.SampleSessionStart:
		s.started = true

	case otlp.SampleActiveTime:
		// Absolute value, last report wins
		s.activeTimeSecs = sample.Value

	case otlp.SampleEditDecision:
		s.toolDecisions = append(s.toolDecisions, ToolDecision{
			Tool:      sample.Tool,
			Decision:  sample.Decision,
			Language:  sample.Language,
			Count:     sample.Value,
			Timestamp: sample.Timestamp,
		})
		if s.currentTrace != "" {
			level := langfuse.LevelDefault
			if sample.Decision != "accept" {
				level = langfuse.LevelWarning
			}
			s.sink.Event(s.currentTrace, langfuse.Event{
				Name:      "code-edit-decision",
				Timestamp: sample.Timestamp,
				Input: map[string]any{
					"tool":     sample.Tool,
					"decision": sample.Decision,
					"language": sample.Language,
				},
				Level: level,
			})
		}
	}
}

// notePrAlias emits a debug note when both pr-count metric names arrive for
// this session within a short window (the client sometimes sends both)
func (s *Session) notePrAlias(sample *otlp.Sample) {
	other := otlp.MetricPullRequestCount
	if sample.MetricName == other {
		other = otlp.MetricPRCount
	}
	if last, ok := s.lastPrMetric[other]; ok && absDuration(sample.Timestamp.Sub(last)) < 2*time.Second {
		logger.Debug("Both pr.count and pull_request.count reported for session",
			"session", s.key)
	}
	s.lastPrMetric[sample.MetricName] = sample.Timestamp
}

func (s *Session) addTokens(model string, t Tokens) {
	s.tokens.Input += t.Input
	s.tokens.Output += t.Output
	s.tokens.CacheRead += t.CacheRead
	s.tokens.CacheCreation += t.CacheCreation

	mt, ok := s.perModelTokens[model]
	if !ok {
		mt = &Tokens{}
		s.perModelTokens[model] = mt
	}
	mt.Input += t.Input
	mt.Output += t.Output
	mt.CacheRead += t.CacheRead
	mt.CacheCreation += t.CacheCreation
}

// emitEvent sends an event under the current conversation. Events arriving
// before any conversation exists have no parent trace and are dropped.
func (s *Session) emitEvent(e langfuse.Event) {
	if s.currentTrace == "" {
		logger.Debug("No open conversation for event", "session", s.key, "event", e.Name)
		return
	}
	s.sink.Event(s.currentTrace, e)
}

// Finalize emits the session summary trace with its two scores and marks
// the session closed. Idempotent; later ingests are ignored.
func (s *Session) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return
	}
	s.finalized = true
	s.currentTrace = ""

	summary := s.buildSummary()

	trace := s.sink.Trace("session-summary", s.key, nil, summary, s.identityMetadata())

	quality, qualityComment := qualityScore(s.apiErrors, s.toolDecisions)
	s.sink.Score(trace, "quality", quality, qualityComment)

	efficiency, efficiencyComment := efficiencyScore(s.tokens, s.totalCostUSD, s.apiCalls)
	s.sink.Score(trace, "efficiency", efficiency, efficiencyComment)

	s.notifier.SessionFinalized(s.key, summary)

	logger.Info("Session finalized",
		"session", s.key,
		"conversations", s.conversationIndex,
		"api_calls", s.apiCalls,
		"total_cost_usd", s.totalCostUSD,
		"total_tokens", s.tokens.Total(),
		"quality", quality,
		"efficiency", efficiency,
	)
}

func (s *Session) buildSummary() map[string]any {
	decisions := s.toolDecisions
	if decisions == nil {
		decisions = []ToolDecision{}
	}

	return map[string]any{
		"conversationCount": s.conversationIndex,
		"apiCallCount":      s.apiCalls,
		"toolCallCount":     s.toolResults,
		"totalCost":         s.totalCostUSD,
		"totalTokens":       s.tokens.Total(),
		"cacheTokens": map[string]any{
			"read":     s.tokens.CacheRead,
			"creation": s.tokens.CacheCreation,
		},
		"additionalMetrics": map[string]any{
			"activeTime":           s.activeTimeSecs,
			"commitCount":          s.commitCount,
			"pullRequestCount":     s.prCount,
			"linesAdded":           s.linesAdded,
			"linesRemoved":         s.linesRemoved,
			"sessionStartReported": s.started,
			"toolDecisions":        decisions,
		},
	}
}

func (s *Session) identityMetadata() map[string]any {
	return map[string]any{
		"organizationId":  s.identity.OrganizationID,
		"userAccountUuid": s.identity.UserAccountUUID,
		"userEmail":       s.identity.UserEmail,
		"terminalType":    s.identity.TerminalType,
		"appVersion":      s.identity.AppVersion,
	}
}

func conversationName(index int) string {
	return "conversation-" + strconv.Itoa(index)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
