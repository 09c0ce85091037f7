package engine

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/steveyegge/boardsync/internal/telemetry"
)

const engineScopeName = "github.com/steveyegge/boardsync/engine"

type instruments struct {
	score  metric.Float64Histogram
	writes metric.Int64Counter
	runs   metric.Int64Counter
}

var (
	instOnce sync.Once
	inst     *instruments
)

// engineInstruments builds the engine's metrics against the global meter
// provider. Without telemetry.Init the provider is a no-op.
func engineInstruments() *instruments {
	instOnce.Do(func() {
		m := telemetry.Meter(engineScopeName)
		score, _ := m.Float64Histogram("boardsync.rice.score",
			metric.WithDescription("Computed RICE scores"),
		)
		writes, _ := m.Int64Counter("boardsync.writes",
			metric.WithDescription("Board fields written by automation runs"),
		)
		runs, _ := m.Int64Counter("boardsync.runs",
			metric.WithDescription("Automation runs by kind and outcome"),
		)
		inst = &instruments{score: score, writes: writes, runs: runs}
	})
	return inst
}

func (i *instruments) recordScore(ctx context.Context, value float64, formula string) {
	i.score.Record(ctx, value, metric.WithAttributes(attribute.String("boardsync.formula", formula)))
}

func (i *instruments) recordWrite(ctx context.Context, kind Kind, field string) {
	i.writes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("boardsync.kind", string(kind)),
		attribute.String("boardsync.field", field),
	))
}

func (i *instruments) recordRun(ctx context.Context, res *Result, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case res != nil && res.Skipped:
		outcome = "skipped"
	}
	kind := KindIgnored
	if res != nil {
		kind = res.Kind
	}
	i.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("boardsync.kind", string(kind)),
		attribute.String("boardsync.outcome", outcome),
	))
}
