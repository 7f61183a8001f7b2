package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newSpanRecorder installs a recording tracer provider and returns the
// recorder. The previous global provider is not restored; every test
// installs its own.
func newSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { tp.Shutdown(context.Background()) })
	return recorder
}

func singleSpan(t *testing.T, recorder *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	return spans[0]
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := map[attribute.Key]attribute.Value{}
	for _, attr := range span.Attributes() {
		attrs[attr.Key] = attr.Value
	}
	return attrs
}

func TestStartDBSpan(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		operation DBOperation
		wantName  string
	}{
		{"mission lookup", "missions", DBOperationQuery, "query missions"},
		{"worker pool listing", "workers", DBOperationQuery, "query workers"},
		{"mission insert", "missions", DBOperationInsert, "insert missions"},
		{"worker update", "workers", DBOperationUpdate, "update workers"},
		{"worker delete", "workers", DBOperationDelete, "delete workers"},
		{"migration exec", "schema_migrations", DBOperationExec, "exec schema_migrations"},
		{"query without table", "", DBOperationQuery, "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := newSpanRecorder(t)

			_, endSpan := StartDBSpan(context.Background(), tt.table, tt.operation)
			endSpan(nil)

			span := singleSpan(t, recorder)
			if span.Name() != tt.wantName {
				t.Errorf("span name = %q, want %q", span.Name(), tt.wantName)
			}

			attrs := spanAttrs(span)
			if got := attrs["db.system"].AsString(); got != "postgresql" {
				t.Errorf("db.system = %q, want postgresql", got)
			}
			if got := attrs["db.operation"].AsString(); got != string(tt.operation) {
				t.Errorf("db.operation = %q, want %q", got, tt.operation)
			}
			tableAttr, hasTable := attrs["db.sql.table"]
			if tt.table == "" && hasTable {
				t.Error("unexpected db.sql.table attribute")
			}
			if tt.table != "" && tableAttr.AsString() != tt.table {
				t.Errorf("db.sql.table = %q, want %q", tableAttr.AsString(), tt.table)
			}
		})
	}
}

func TestStartDBSpan_WithError(t *testing.T) {
	recorder := newSpanRecorder(t)
	queryErr := errors.New("pq: connection refused")

	_, endSpan := StartDBSpan(context.Background(), "workers", DBOperationQuery)
	endSpan(queryErr)

	span := singleSpan(t, recorder)
	if span.Status().Code.String() != "Error" {
		t.Errorf("expected error status, got %s", span.Status().Code.String())
	}
	if span.Status().Description != queryErr.Error() {
		t.Errorf("status description = %q, want %q", span.Status().Description, queryErr.Error())
	}
}

func TestStartSpan(t *testing.T) {
	recorder := newSpanRecorder(t)

	_, endSpan := StartSpan(context.Background(), "compute_candidates")
	endSpan(nil)

	span := singleSpan(t, recorder)
	if span.Name() != "compute_candidates" {
		t.Errorf("span name = %q, want compute_candidates", span.Name())
	}

	// Unset is the SDK default for spans that ended cleanly.
	if code := span.Status().Code.String(); code != "Unset" && code != "Ok" {
		t.Errorf("expected Unset or Ok status, got %s", code)
	}
}

func TestStartSpan_WithError(t *testing.T) {
	recorder := newSpanRecorder(t)

	_, endSpan := StartSpan(context.Background(), "compute_candidates")
	endSpan(errors.New("ranking deadline exceeded"))

	span := singleSpan(t, recorder)
	if span.Status().Code.String() != "Error" {
		t.Errorf("expected error status, got %s", span.Status().Code.String())
	}
}

func TestAddEvent(t *testing.T) {
	recorder := newSpanRecorder(t)

	tracer := otel.Tracer("renfort/ranking")
	ctx, span := tracer.Start(context.Background(), "compute_candidates")

	AddEvent(ctx, "worker_pool_cache_hit",
		attribute.String("cache_key", "workers:verified"),
		attribute.Int("ttl_seconds", 60),
	)
	span.End()

	events := singleSpan(t, recorder).Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Name != "worker_pool_cache_hit" {
		t.Errorf("event name = %q, want worker_pool_cache_hit", events[0].Name)
	}
	if len(events[0].Attributes) != 2 {
		t.Fatalf("expected 2 event attributes, got %d", len(events[0].Attributes))
	}
}

func TestSetAttributes(t *testing.T) {
	recorder := newSpanRecorder(t)

	tracer := otel.Tracer("renfort/ranking")
	ctx, span := tracer.Start(context.Background(), "compute_candidates")

	SetAttributes(ctx,
		attribute.String("mission_id", "m-123"),
		attribute.Float64("radius_km", 50),
	)
	span.End()

	attrs := spanAttrs(singleSpan(t, recorder))
	if got := attrs["mission_id"].AsString(); got != "m-123" {
		t.Errorf("mission_id = %q, want m-123", got)
	}
	if got := attrs["radius_km"].AsFloat64(); got != 50 {
		t.Errorf("radius_km = %v, want 50", got)
	}
}
