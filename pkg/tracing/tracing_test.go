package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordingProvider() (*Provider, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return &Provider{tp: tp, tracer: tp.Tracer("test")}, rec
}

func TestStageRecordsSpan(t *testing.T) {
	p, rec := recordingProvider()

	err := p.Stage(context.Background(), "cap_outliers", func(ctx context.Context) error {
		AddEvent(ctx, "cap_computed")
		return nil
	})
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "cap_outliers" {
		t.Errorf("Expected span name cap_outliers, got %s", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("Expected Ok status, got %v", spans[0].Status().Code)
	}
	if len(spans[0].Events()) != 1 {
		t.Errorf("Expected 1 event, got %d", len(spans[0].Events()))
	}
}

func TestStagePropagatesError(t *testing.T) {
	p, rec := recordingProvider()
	want := errors.New("boom")

	err := p.Stage(context.Background(), "ingest", func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Expected %v, got %v", want, err)
	}

	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Status().Code != codes.Error {
		t.Errorf("Expected one errored span, got %+v", spans)
	}
}

func TestInitTracerDisabled(t *testing.T) {
	p, err := InitTracer(Config{Enabled: false})
	if err != nil {
		t.Fatalf("InitTracer failed: %v", err)
	}
	defer p.Shutdown(context.Background())

	if p.Tracer() == nil {
		t.Error("Expected a tracer even when disabled")
	}
}
