package tracer

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, span := StartSpan(context.Background(), "noop")
	EndSpan(span, nil)
	if TraceID(ctx) != "" {
		t.Error("disabled tracing should not produce trace ids")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_EnabledRequiresEndpoint(t *testing.T) {
	if _, err := New(context.Background(), Config{Enabled: true}); err == nil {
		t.Error("New() without endpoint should fail")
	}
}

func TestStartSpan_Exported(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p, err := New(context.Background(), Config{
		Enabled:     true,
		ServiceName: "tokgate-test",
		SampleRatio: 1,
		Exporter:    exp,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Shutdown(context.Background())

	ctx, parent := StartSpan(context.Background(), "http.request", attribute.String("http.route", "/chats"))
	if TraceID(ctx) == "" {
		t.Error("TraceID() = empty, want a trace id")
	}
	_, child := StartSpan(ctx, "protocol.dialogs")
	EndSpan(child, errors.New("FLOOD_WAIT_30"))
	EndSpan(parent, nil)

	if err := p.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}
	if spans[0].Name != "protocol.dialogs" || spans[0].Status.Code != codes.Error {
		t.Errorf("child span = %s %v, want protocol.dialogs Error", spans[0].Name, spans[0].Status.Code)
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("child span is not parented to the request span")
	}
}

func TestProvider_ShutdownTwice(t *testing.T) {
	p, err := New(context.Background(), Config{Enabled: true, SampleRatio: 1, Exporter: tracetest.NewInMemoryExporter()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("first Shutdown() error = %v", err)
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	ctx, span := p.Start(context.Background(), "x")
	EndSpan(span, nil)
	if ctx == nil {
		t.Error("Start() returned nil context")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
