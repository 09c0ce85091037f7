package board

import (
	"context"
	"log/slog"
	"sync"

	"github.com/steveyegge/boardsync/internal/types"
)

// DryRun wraps a Board so reads pass through and writes are logged and
// recorded but never sent. Recorded writes are overlaid on later reads so a
// run behaves as if its writes had landed.
type DryRun struct {
	Board
	log *slog.Logger

	mu      sync.Mutex
	writes  []Write
	numbers map[string]map[types.Field]float64
	choices map[string]map[types.Field]string
	bodies  map[int]string
}

// NewDryRun wraps b.
func NewDryRun(b Board, log *slog.Logger) *DryRun {
	if log == nil {
		log = slog.Default()
	}
	return &DryRun{
		Board:   b,
		log:     log,
		numbers: make(map[string]map[types.Field]float64),
		choices: make(map[string]map[types.Field]string),
		bodies:  make(map[int]string),
	}
}

// Writes returns the writes that would have been sent.
func (d *DryRun) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Write(nil), d.writes...)
}

func (d *DryRun) record(w Write) {
	d.writes = append(d.writes, w)
	d.log.Info("dry-run: skipped write", "op", string(w.Op), "write", w.String())
}

// Invalidate forwards to the wrapped board when it caches item state.
func (d *DryRun) Invalidate(itemID string) {
	if inv, ok := d.Board.(Invalidator); ok {
		inv.Invalidate(itemID)
	}
}

// ReadNumber implements Store.
func (d *DryRun) ReadNumber(ctx context.Context, itemID string, field types.Field) (*float64, error) {
	d.mu.Lock()
	v, ok := d.numbers[itemID][field]
	d.mu.Unlock()
	if ok {
		return &v, nil
	}
	return d.Board.ReadNumber(ctx, itemID, field)
}

// ReadChoice implements Store.
func (d *DryRun) ReadChoice(ctx context.Context, itemID string, field types.Field) (*types.Choice, error) {
	d.mu.Lock()
	id, ok := d.choices[itemID][field]
	d.mu.Unlock()
	if ok {
		return &types.Choice{OptionID: id}, nil
	}
	return d.Board.ReadChoice(ctx, itemID, field)
}

// WriteNumber implements Store.
func (d *DryRun) WriteNumber(_ context.Context, itemID string, field types.Field, value float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.numbers[itemID] == nil {
		d.numbers[itemID] = make(map[types.Field]float64)
	}
	d.numbers[itemID][field] = value
	d.record(Write{Op: OpNumber, ItemID: itemID, Field: field, Number: value})
	return nil
}

// WriteChoice implements Store.
func (d *DryRun) WriteChoice(_ context.Context, itemID string, field types.Field, optionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.choices[itemID] == nil {
		d.choices[itemID] = make(map[types.Field]string)
	}
	d.choices[itemID][field] = optionID
	d.record(Write{Op: OpChoice, ItemID: itemID, Field: field, OptionID: optionID})
	return nil
}

// ReadItemText implements Store.
func (d *DryRun) ReadItemText(ctx context.Context, issueNumber int) (types.IssueText, error) {
	text, err := d.Board.ReadItemText(ctx, issueNumber)
	if err != nil {
		return text, err
	}
	d.mu.Lock()
	if body, ok := d.bodies[issueNumber]; ok {
		text.Body = body
	}
	d.mu.Unlock()
	return text, nil
}

// RewriteItemBody implements Store.
func (d *DryRun) RewriteItemBody(_ context.Context, issueNumber int, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bodies[issueNumber] = body
	d.record(Write{Op: OpBody, Issue: issueNumber, Body: body})
	return nil
}
