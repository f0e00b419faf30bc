package observability_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kaizoku-dev/kzk/internal/observability"
)

type testPropagator struct{}

func (testPropagator) Inject(context.Context, propagation.TextMapCarrier) {}

func (testPropagator) Extract(ctx context.Context, _ propagation.TextMapCarrier) context.Context {
	return ctx
}

func (testPropagator) Fields() []string { return nil }

func TestSetupTelemetry_DisabledLeavesGlobalsAlone(t *testing.T) {
	origTP := otel.GetTracerProvider()
	origPropagator := otel.GetTextMapPropagator()

	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetTextMapPropagator(origPropagator)
	})

	sentinelTP := sdktrace.NewTracerProvider()
	t.Cleanup(func() {
		_ = sentinelTP.Shutdown(context.Background())
	})

	otel.SetTracerProvider(sentinelTP)
	otel.SetTextMapPropagator(testPropagator{})

	shutdown, err := observability.SetupTelemetry(context.Background(), &observability.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}

	if got := otel.GetTracerProvider(); got != sentinelTP {
		t.Fatal("tracer provider changed when telemetry disabled")
	}

	if _, ok := otel.GetTextMapPropagator().(testPropagator); !ok {
		t.Fatal("propagator changed when telemetry disabled")
	}
}

func TestSetupTelemetry_NilConfig(t *testing.T) {
	shutdown, err := observability.SetupTelemetry(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if shutdown == nil {
		t.Fatal("shutdown should never be nil")
	}
}

func TestTelemetryFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("KZK_OTEL_ENDPOINT", " collector:4318 ")

	cfg := observability.TelemetryFromEnv("1.2.3", "abc")
	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}

	if cfg.Endpoint != "collector:4318" {
		t.Errorf("Endpoint = %q, want trimmed value", cfg.Endpoint)
	}

	if cfg.Version != "1.2.3" || cfg.Commit != "abc" {
		t.Errorf("version/commit = %q/%q", cfg.Version, cfg.Commit)
	}
}
