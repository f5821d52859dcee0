package otlp

import (
	"reflect"
	"testing"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
)

func strVal(s string) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: s}}
}

func intVal(n int64) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: n}}
}

func TestDecodeValueScalars(t *testing.T) {
	if got := DecodeValue(strVal("hello")); got != "hello" {
		t.Errorf("Expected hello, got %v", got)
	}
	if got := DecodeValue(intVal(42)); got != int64(42) {
		t.Errorf("Expected int64 42, got %v (%T)", got, got)
	}
	if got := DecodeValue(&commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: 1.5}}); got != 1.5 {
		t.Errorf("Expected 1.5, got %v", got)
	}
	if got := DecodeValue(&commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: true}}); got != true {
		t.Errorf("Expected true, got %v", got)
	}
}

func TestDecodeValueNullSentinels(t *testing.T) {
	if got := DecodeValue(nil); got != nil {
		t.Errorf("Expected nil for nil value, got %v", got)
	}
	// Empty tag decodes to the null sentinel instead of raising
	if got := DecodeValue(&commonpb.AnyValue{}); got != nil {
		t.Errorf("Expected nil for empty tag, got %v", got)
	}
}

func TestDecodeValueNested(t *testing.T) {
	v := &commonpb.AnyValue{Value: &commonpb.AnyValue_ArrayValue{
		ArrayValue: &commonpb.ArrayValue{Values: []*commonpb.AnyValue{
			strVal("a"),
			intVal(2),
			{Value: &commonpb.AnyValue_KvlistValue{KvlistValue: &commonpb.KeyValueList{
				Values: []*commonpb.KeyValue{
					{Key: "inner", Value: strVal("x")},
				},
			}}},
		}},
	}}

	want := []any{"a", int64(2), map[string]any{"inner": "x"}}
	if got := DecodeValue(v); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestDecodeAttributesLastWriteWins(t *testing.T) {
	attrs := DecodeAttributes([]*commonpb.KeyValue{
		{Key: "k", Value: strVal("first")},
		{Key: "k", Value: strVal("second")},
		{Key: "n", Value: intVal(7)},
	})

	if attrs["k"] != "second" {
		t.Errorf("Expected last write to win, got %v", attrs["k"])
	}
	if attrs["n"] != int64(7) {
		t.Errorf("Expected 7, got %v", attrs["n"])
	}
}

func TestTypedGetterCoercion(t *testing.T) {
	attrs := map[string]any{
		"str_int":    "123",
		"dbl":        float64(9.5),
		"num":        int64(4),
		"str_float":  "0.25",
		"str_bool":   "true",
		"bad_number": "twelve",
	}

	if got := intAttr(attrs, "str_int"); got != 123 {
		t.Errorf("String ints must coerce, got %d", got)
	}
	if got := intAttr(attrs, "dbl"); got != 9 {
		t.Errorf("Doubles must truncate to int, got %d", got)
	}
	if got := intAttr(attrs, "bad_number"); got != 0 {
		t.Errorf("Unparsable values must default to 0, got %d", got)
	}
	if got := intAttr(attrs, "missing"); got != 0 {
		t.Errorf("Missing ints must default to 0, got %d", got)
	}
	if got := floatAttr(attrs, "str_float"); got != 0.25 {
		t.Errorf("String floats must coerce, got %f", got)
	}
	if got := floatAttr(attrs, "num"); got != 4.0 {
		t.Errorf("Ints must widen to float, got %f", got)
	}
	if got := boolAttr(attrs, "str_bool"); !got {
		t.Error("String bools must coerce")
	}
	if got := boolAttr(attrs, "missing"); got {
		t.Error("Missing bools must default to false")
	}
	if got := stringAttr(attrs, "missing", "unknown"); got != "unknown" {
		t.Errorf("Missing strings must take the default, got %q", got)
	}
}
