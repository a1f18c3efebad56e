package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/telemetry"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) (*tracetest.SpanRecorder, *telemetry.OTelTracer) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, telemetry.NewOTelTracerFrom(tp, "test-tracer")
}

func attrMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		switch a.Value.Type() {
		case attribute.STRING:
			m[string(a.Key)] = a.Value.AsString()
		case attribute.INT64:
			m[string(a.Key)] = a.Value.AsInt64()
		case attribute.FLOAT64:
			m[string(a.Key)] = a.Value.AsFloat64()
		case attribute.BOOL:
			m[string(a.Key)] = a.Value.AsBool()
		case attribute.STRINGSLICE:
			m[string(a.Key)] = a.Value.AsStringSlice()
		}
	}
	return m
}

func TestOTelTracer_StartAttributes(t *testing.T) {
	sr, tracer := setupRecorder(t)

	_, span := tracer.Start(context.Background(), "query.fetch",
		ports.WithAttribute("cache.key", "products:seller:42"),
		ports.WithAttribute("cache.generation", uint64(3)),
		ports.WithAttribute("cache.background", true),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "query.fetch", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "products:seller:42", attrs["cache.key"])
	assert.Equal(t, int64(3), attrs["cache.generation"])
	assert.Equal(t, true, attrs["cache.background"])
}

func TestOTelSpan_SetAttribute(t *testing.T) {
	sr, tracer := setupRecorder(t)

	_, span := tracer.Start(context.Background(), "attr-test")
	span.SetAttribute("str", "val")
	span.SetAttribute("int", 123)
	span.SetAttribute("int64", int64(456))
	span.SetAttribute("float", 3.14)
	span.SetAttribute("bool", true)
	span.SetAttribute("delay", 1500*time.Millisecond)
	span.SetAttribute("slice", []string{"a", "b"})
	span.SetAttribute("unknown", struct{}{})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "val", attrs["str"])
	assert.Equal(t, int64(123), attrs["int"])
	assert.Equal(t, int64(456), attrs["int64"])
	assert.InEpsilon(t, 3.14, attrs["float"], 0.001)
	assert.Equal(t, true, attrs["bool"])
	assert.Equal(t, int64(1500), attrs["delay"])
	assert.Equal(t, []string{"a", "b"}, attrs["slice"])
	assert.Equal(t, "{}", attrs["unknown"])
}

func TestOTelSpan_RecordError(t *testing.T) {
	sr, tracer := setupRecorder(t)

	_, span := tracer.Start(context.Background(), "query.fetch")
	span.RecordError(nil)
	span.RecordError(errors.New("upstream returned 503"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "upstream returned 503", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestOTelTracer_NestsSpans(t *testing.T) {
	sr, tracer := setupRecorder(t)

	ctx, parent := tracer.Start(context.Background(), "catalog.prefetch")
	_, child := tracer.Start(ctx, "query.fetch")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}
