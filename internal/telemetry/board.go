package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveyegge/boardsync/internal/board"
	"github.com/steveyegge/boardsync/internal/types"
)

const boardScopeName = "github.com/steveyegge/boardsync/board"

// InstrumentedBoard wraps board.Board with OTel tracing and metrics.
// Every method gets a span and is counted in boardsync.store.* metrics.
// Use WrapBoard to create one; it returns the original board unchanged when
// telemetry is disabled.
type InstrumentedBoard struct {
	inner  board.Board
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapBoard returns b decorated with OTel instrumentation.
// When telemetry is disabled, b is returned as-is with zero overhead.
func WrapBoard(b board.Board) board.Board {
	if !Enabled() {
		return b
	}
	return newInstrumentedBoard(b, Meter(boardScopeName), Tracer(boardScopeName))
}

func newInstrumentedBoard(b board.Board, m metric.Meter, tracer trace.Tracer) *InstrumentedBoard {
	ops, _ := m.Int64Counter("boardsync.store.operations",
		metric.WithDescription("Total board store operations executed"),
	)
	dur, _ := m.Float64Histogram("boardsync.store.operation.duration",
		metric.WithDescription("Board store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("boardsync.store.errors",
		metric.WithDescription("Total board store operation errors"),
	)
	return &InstrumentedBoard{
		inner:  b,
		tracer: tracer,
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// op starts a span and records a metric for the named store operation.
func (s *InstrumentedBoard) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("boardsync.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "board."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedBoard) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func fieldAttrs(itemID string, f types.Field) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("boardsync.item.id", itemID),
		attribute.String("boardsync.field", string(f)),
	}
}

// Invalidate forwards to the wrapped board when it caches item state.
func (s *InstrumentedBoard) Invalidate(itemID string) {
	if inv, ok := s.inner.(board.Invalidator); ok {
		inv.Invalidate(itemID)
	}
}

// ── Fields ──────────────────────────────────────────────────────────────────

func (s *InstrumentedBoard) ReadNumber(ctx context.Context, itemID string, f types.Field) (*float64, error) {
	attrs := fieldAttrs(itemID, f)
	ctx, span, t := s.op(ctx, "ReadNumber", attrs...)
	v, err := s.inner.ReadNumber(ctx, itemID, f)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedBoard) ReadChoice(ctx context.Context, itemID string, f types.Field) (*types.Choice, error) {
	attrs := fieldAttrs(itemID, f)
	ctx, span, t := s.op(ctx, "ReadChoice", attrs...)
	v, err := s.inner.ReadChoice(ctx, itemID, f)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedBoard) WriteNumber(ctx context.Context, itemID string, f types.Field, value float64) error {
	attrs := append(fieldAttrs(itemID, f), attribute.Float64("boardsync.value", value))
	ctx, span, t := s.op(ctx, "WriteNumber", attrs...)
	err := s.inner.WriteNumber(ctx, itemID, f, value)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedBoard) WriteChoice(ctx context.Context, itemID string, f types.Field, optionID string) error {
	attrs := append(fieldAttrs(itemID, f), attribute.String("boardsync.option.id", optionID))
	ctx, span, t := s.op(ctx, "WriteChoice", attrs...)
	err := s.inner.WriteChoice(ctx, itemID, f, optionID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

// ── Issues ──────────────────────────────────────────────────────────────────

func (s *InstrumentedBoard) ReadItemText(ctx context.Context, issue int) (types.IssueText, error) {
	attrs := []attribute.KeyValue{attribute.Int("boardsync.issue", issue)}
	ctx, span, t := s.op(ctx, "ReadItemText", attrs...)
	v, err := s.inner.ReadItemText(ctx, issue)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedBoard) RewriteItemBody(ctx context.Context, issue int, body string) error {
	attrs := []attribute.KeyValue{
		attribute.Int("boardsync.issue", issue),
		attribute.Int("boardsync.body.bytes", len(body)),
	}
	ctx, span, t := s.op(ctx, "RewriteItemBody", attrs...)
	err := s.inner.RewriteItemBody(ctx, issue, body)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedBoard) FindItem(ctx context.Context, issue int) (string, error) {
	attrs := []attribute.KeyValue{attribute.Int("boardsync.issue", issue)}
	ctx, span, t := s.op(ctx, "FindItem", attrs...)
	v, err := s.inner.FindItem(ctx, issue)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedBoard) ParentOf(ctx context.Context, issue int) (int, bool, error) {
	attrs := []attribute.KeyValue{attribute.Int("boardsync.issue", issue)}
	ctx, span, t := s.op(ctx, "ParentOf", attrs...)
	p, ok, err := s.inner.ParentOf(ctx, issue)
	s.done(ctx, span, t, err, attrs...)
	return p, ok, err
}
