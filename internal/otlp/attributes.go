package otlp

import (
	"strconv"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
)

// DecodeValue converts an OTLP AnyValue into a native Go value.
// Arrays recurse, kvlists become maps, unknown or empty tags decode to nil.
func DecodeValue(v *commonpb.AnyValue) any {
	if v == nil {
		return nil
	}
	switch val := v.Value.(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue
	case *commonpb.AnyValue_IntValue:
		return val.IntValue
	case *commonpb.AnyValue_DoubleValue:
		return val.DoubleValue
	case *commonpb.AnyValue_BoolValue:
		return val.BoolValue
	case *commonpb.AnyValue_ArrayValue:
		return decodeArray(val.ArrayValue)
	case *commonpb.AnyValue_KvlistValue:
		return decodeKvList(val.KvlistValue)
	case *commonpb.AnyValue_BytesValue:
		return val.BytesValue
	default:
		return nil
	}
}

func decodeArray(arr *commonpb.ArrayValue) []any {
	if arr == nil {
		return nil
	}
	result := make([]any, len(arr.Values))
	for i, v := range arr.Values {
		result[i] = DecodeValue(v)
	}
	return result
}

func decodeKvList(kvl *commonpb.KeyValueList) map[string]any {
	if kvl == nil {
		return nil
	}
	result := make(map[string]any)
	for _, kv := range kvl.Values {
		result[kv.Key] = DecodeValue(kv.Value)
	}
	return result
}

// DecodeAttributes converts an OTLP attribute bag into a native map,
// last-write-wins on duplicate keys.
func DecodeAttributes(attrs []*commonpb.KeyValue) map[string]any {
	result := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		result[kv.GetKey()] = DecodeValue(kv.GetValue())
	}
	return result
}

// stringAttr returns the attribute as a string, or def when absent or not a string
func stringAttr(attrs map[string]any, key, def string) string {
	if v, ok := attrs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// intAttr returns the attribute as an int64, coercing numeric strings and
// doubles. Missing or unparsable values yield 0.
func intAttr(attrs map[string]any, key string) int64 {
	switch v := attrs[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// floatAttr returns the attribute as a float64, coercing ints and numeric
// strings. Missing or unparsable values yield 0.
func floatAttr(attrs map[string]any, key string) float64 {
	switch v := attrs[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

// boolAttr returns the attribute as a bool, coercing "true"/"false" strings.
// Missing values yield false.
func boolAttr(attrs map[string]any, key string) bool {
	switch v := attrs[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return false
}
