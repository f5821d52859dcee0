package otlp

import (
	"fmt"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	"google.golang.org/protobuf/encoding/protojson"
)

// The receiver speaks OTLP HTTP/JSON only. protojson handles the OTLP JSON
// mapping quirks (int64 fields arriving as strings, enum names, base64 ids).
var unmarshalOpts = protojson.UnmarshalOptions{DiscardUnknown: true}

// DecodeLogs decodes a JSON-encoded OTLP logs export request
func DecodeLogs(data []byte) (*collogspb.ExportLogsServiceRequest, error) {
	req := &collogspb.ExportLogsServiceRequest{}
	if err := unmarshalOpts.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("unmarshaling JSON logs: %w", err)
	}
	return req, nil
}

// DecodeMetrics decodes a JSON-encoded OTLP metrics export request
func DecodeMetrics(data []byte) (*colmetricspb.ExportMetricsServiceRequest, error) {
	req := &colmetricspb.ExportMetricsServiceRequest{}
	if err := unmarshalOpts.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("unmarshaling JSON metrics: %w", err)
	}
	return req, nil
}
