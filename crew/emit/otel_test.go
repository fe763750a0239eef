package emit

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func attributeMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestOTelEmitter(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)

	emitter := NewOTelEmitter(otel.Tracer("crewgraph-test"))

	emitter.Emit(Event{
		RunID:  "run-001",
		Step:   2,
		NodeID: "writer",
		Msg:    "node_complete",
		Meta: map[string]any{
			"duration_ms":      int64(42),
			"members_finished": 1,
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name != "node_complete" {
		t.Errorf("span name = %q", span.Name)
	}
	attrs := attributeMap(span.Attributes)
	if attrs["run_id"] != "run-001" {
		t.Errorf("run_id = %v", attrs["run_id"])
	}
	if attrs["step"] != int64(2) {
		t.Errorf("step = %v", attrs["step"])
	}
	if attrs["node_id"] != "writer" {
		t.Errorf("node_id = %v", attrs["node_id"])
	}
	if attrs["duration_ms"] != int64(42) {
		t.Errorf("duration_ms = %v", attrs["duration_ms"])
	}

	t.Run("error events mark the span", func(t *testing.T) {
		exporter.Reset()
		emitter.Emit(Event{
			RunID: "run-001",
			Msg:   "run_error",
			Meta:  map[string]any{"error": "model invocation failed"},
		})
		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("spans = %d, want 1", len(spans))
		}
		if spans[0].Status.Description != "model invocation failed" {
			t.Errorf("status = %+v", spans[0].Status)
		}
	})
}
