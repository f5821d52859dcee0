package otlp

import (
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
)

// Metric names emitted by the Claude Code telemetry client
const (
	MetricCostUsage        = "claude_code.cost.usage"
	MetricTokenUsage       = "claude_code.token.usage"
	MetricLinesOfCode      = "claude_code.lines_of_code.count"
	MetricCommitCount      = "claude_code.commit.count"
	MetricPRCount          = "claude_code.pr.count"
	MetricPullRequestCount = "claude_code.pull_request.count"
	MetricSessionCount     = "claude_code.session.count"
	MetricActiveTime       = "claude_code.active_time.total"
	MetricEditDecision     = "claude_code.code_edit_tool.decision"
)

// SampleKind classifies a recognized metric datapoint
type SampleKind string

const (
	SampleCost         SampleKind = "cost"
	SampleTokens       SampleKind = "tokens"
	SampleLinesOfCode  SampleKind = "lines_of_code"
	SampleCommits      SampleKind = "commits"
	SamplePullRequests SampleKind = "pull_requests"
	SampleSessionStart SampleKind = "session_start"
	SampleActiveTime   SampleKind = "active_time"
	SampleEditDecision SampleKind = "edit_decision"
)

// Sample is a normalized metric datapoint with the attributes the session
// core dispatches on already extracted.
type Sample struct {
	Kind       SampleKind
	MetricName string
	Timestamp  time.Time
	Value      float64

	Model    string // cost
	Type     string // token type or lines-of-code type
	Tool     string // edit decision
	Decision string
	Language string
}

// NumberDataPoints returns the datapoints of a sum or gauge metric.
// Other metric types are not emitted by the client and yield nil.
func NumberDataPoints(m *metricspb.Metric) []*metricspb.NumberDataPoint {
	switch data := m.Data.(type) {
	case *metricspb.Metric_Sum:
		return data.Sum.GetDataPoints()
	case *metricspb.Metric_Gauge:
		return data.Gauge.GetDataPoints()
	default:
		return nil
	}
}

// NumberValue extracts the numeric value from a NumberDataPoint, defaulting
// to 0 when unset
func NumberValue(dp *metricspb.NumberDataPoint) float64 {
	switch v := dp.Value.(type) {
	case *metricspb.NumberDataPoint_AsDouble:
		return v.AsDouble
	case *metricspb.NumberDataPoint_AsInt:
		return float64(v.AsInt)
	default:
		return 0
	}
}

// MapDataPoint classifies one datapoint of a named metric into a sample.
// Unknown metric names are ignored with a debug log and return (nil, false).
func MapDataPoint(name string, ts time.Time, value float64, attrs map[string]any) (*Sample, bool) {
	s := &Sample{MetricName: name, Timestamp: ts, Value: value}

	switch name {
	case MetricCostUsage:
		s.Kind = SampleCost
		s.Model = stringAttr(attrs, "model", "unknown")
	case MetricTokenUsage:
		s.Kind = SampleTokens
		s.Model = stringAttr(attrs, "model", "unknown")
		s.Type = stringAttr(attrs, "type", "")
	case MetricLinesOfCode:
		s.Kind = SampleLinesOfCode
		s.Type = stringAttr(attrs, "type", "")
	case MetricCommitCount:
		s.Kind = SampleCommits
	case MetricPRCount, MetricPullRequestCount:
		s.Kind = SamplePullRequests
	case MetricSessionCount:
		s.Kind = SampleSessionStart
	case MetricActiveTime:
		s.Kind = SampleActiveTime
	case MetricEditDecision:
		s.Kind = SampleEditDecision
		s.Tool = stringAttr(attrs, "tool", stringAttr(attrs, "tool_name", "unknown"))
		s.Decision = stringAttr(attrs, "decision", "unknown")
		s.Language = stringAttr(attrs, "language", "unknown")
	default:
		logger.Debug("Ignoring unrecognized metric", "name", name)
		return nil, false
	}

	return s, true
}
