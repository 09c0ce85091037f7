package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func resetGlobals(t *testing.T) {
	out := Output
	t.Cleanup(func() {
		Shutdown(context.Background())
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		Output = out
	})
}

func TestInit_Disabled(t *testing.T) {
	resetGlobals(t)
	t.Setenv("BOARDSYNC_OTEL_ENABLED", "")

	if err := Init(context.Background(), "boardsync", "test"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if Enabled() {
		t.Error("Enabled() = true with BOARDSYNC_OTEL_ENABLED unset")
	}
	if len(shutdownFns) != 0 {
		t.Errorf("disabled Init registered %d shutdown funcs", len(shutdownFns))
	}
	_, span := Tracer("").Start(context.Background(), "noop")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a recording span")
	}
}

func TestInit_StdoutExportsOnShutdown(t *testing.T) {
	resetGlobals(t)
	t.Setenv("BOARDSYNC_OTEL_ENABLED", "true")
	t.Setenv("BOARDSYNC_OTEL_STDOUT", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")
	var buf bytes.Buffer
	Output = &buf

	ctx := context.Background()
	if err := Init(ctx, "boardsync", "test"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	counter, err := Meter("").Int64Counter("boardsync.test.counter")
	if err != nil {
		t.Fatalf("Int64Counter() error = %v", err)
	}
	counter.Add(ctx, 3)
	_, span := Tracer("").Start(ctx, "test-span")
	span.End()

	Shutdown(ctx)

	out := buf.String()
	for _, want := range []string{"boardsync.test.counter", "test-span"} {
		if !strings.Contains(out, want) {
			t.Errorf("exported output does not contain %q", want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty() = %q, want b", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}
