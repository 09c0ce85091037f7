package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/steveyegge/boardsync/internal/board"
	"github.com/steveyegge/boardsync/internal/bodytext"
	"github.com/steveyegge/boardsync/internal/propagate"
	"github.com/steveyegge/boardsync/internal/rice"
	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/tokens"
	"github.com/steveyegge/boardsync/internal/types"
)

// DefaultConcurrency is the number of issues Resync processes at once.
const DefaultConcurrency = 4

// Engine executes automation runs against a board.
//
// A run reads everything it needs fresh from the board, computes decisions
// with the pure rice/propagate packages, and executes only the writes those
// decisions call for. Runs on distinct issues may execute concurrently.
type Engine struct {
	Board  board.Board
	Schema *schema.Holder
	Logger *slog.Logger

	// StripBody removes form sections from an initiative's body once its
	// fields have been synced.
	StripBody bool

	// Concurrency bounds Resync; zero means DefaultConcurrency.
	Concurrency int
}

// New creates an engine for b using the schema in holder.
func New(b board.Board, holder *schema.Holder, logger *slog.Logger) *Engine {
	return &Engine{
		Board:       b,
		Schema:      holder,
		Logger:      logger,
		StripBody:   true,
		Concurrency: DefaultConcurrency,
	}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// run carries the per-run state shared by the steps of one automation.
type run struct {
	e      *Engine
	sch    *schema.Schema
	log    *slog.Logger
	res    *Result
	itemID string
	inst   *instruments
}

func (e *Engine) newRun(kind Kind, issue int) *run {
	id := uuid.NewString()
	return &run{
		e:    e,
		sch:  e.Schema.Get(),
		log:  e.logger().With("run_id", id, "kind", string(kind), "issue", issue),
		res:  &Result{RunID: id, Kind: kind, Issue: issue, Tier: types.TierNone},
		inst: engineInstruments(),
	}
}

func (r *run) invalidate(itemID string) {
	if inv, ok := r.e.Board.(board.Invalidator); ok {
		inv.Invalidate(itemID)
	}
}

// locate resolves an issue to its board item. ok is false, with a nil
// error, when the issue is not on the board.
func (r *run) locate(ctx context.Context, issue int) (string, bool, error) {
	id, err := r.e.Board.FindItem(ctx, issue)
	if errors.Is(err, board.ErrItemNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to locate issue #%d: %w", issue, err)
	}
	return id, true, nil
}

func (r *run) writeChoice(ctx context.Context, itemID string, f types.Field, optionID, display, reason string) error {
	if err := r.e.Board.WriteChoice(ctx, itemID, f, optionID); err != nil {
		return fmt.Errorf("failed to write %s: %w", f, err)
	}
	r.inst.recordWrite(ctx, r.res.Kind, string(f))
	r.log.Info("field updated", "field", string(f), "value", display, "reason", reason)
	r.res.record(Change{Field: f, Value: display, Written: true, Reason: reason})
	return nil
}

func (r *run) writeNumber(ctx context.Context, f types.Field, value float64, reason string) error {
	if err := r.e.Board.WriteNumber(ctx, r.itemID, f, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", f, err)
	}
	display := strconv.FormatFloat(value, 'f', -1, 64)
	r.inst.recordWrite(ctx, r.res.Kind, string(f))
	r.log.Info("field updated", "field", string(f), "value", display, "reason", reason)
	r.res.record(Change{Field: f, Value: display, Written: true, Reason: reason})
	return nil
}

func (r *run) unchanged(f types.Field, display, reason string) {
	r.log.Debug("field unchanged", "field", string(f), "value", display, "reason", reason)
	r.res.record(Change{Field: f, Value: display, Reason: reason})
}

func (r *run) missing(f types.Field, msg string, args ...any) {
	r.res.Stats.Missing++
	r.log.Info(msg, append([]any{"field", string(f)}, args...)...)
}

// SyncInitiative syncs an initiative's board item from its issue text:
// token-backed choices, reach, RICE score and priority tier. An issue that
// is not on the board is skipped, not an error. Store failures abort the
// run and are returned.
func (e *Engine) SyncInitiative(ctx context.Context, issue int) (res *Result, err error) {
	r := e.newRun(KindInitiative, issue)
	defer func() { r.inst.recordRun(ctx, res, err) }()

	itemID, ok, err := r.locate(ctx, issue)
	if err != nil {
		return r.res, err
	}
	if !ok {
		r.log.Info("issue is not on the project board, skipping")
		return r.res.skip("not on board"), nil
	}
	r.itemID = itemID
	r.res.ItemID = itemID
	r.log = r.log.With("item", itemID)
	r.invalidate(itemID)

	text, err := e.Board.ReadItemText(ctx, issue)
	if err != nil {
		return r.res, fmt.Errorf("failed to read issue #%d: %w", issue, err)
	}

	if err := r.seedPhase(ctx); err != nil {
		return r.res, err
	}

	markers := tokens.Extract(r.sch, text)
	stored, err := r.syncChoices(ctx, markers)
	if err != nil {
		return r.res, err
	}

	reach, err := r.syncReach(ctx, markers.Reach)
	if err != nil {
		return r.res, err
	}

	if err := r.score(ctx, reach, markers, stored); err != nil {
		return r.res, err
	}

	if e.StripBody {
		if err := r.stripBody(ctx, text.Body); err != nil {
			return r.res, err
		}
	}

	r.log.Info("initiative synced",
		"written", r.res.Stats.Written,
		"unchanged", r.res.Stats.Unchanged,
		"missing", r.res.Stats.Missing,
	)
	return r.res, nil
}

// seedPhase puts an item with no workflow phase into discovery.
func (r *run) seedPhase(ctx context.Context) error {
	stored, err := r.e.Board.ReadChoice(ctx, r.itemID, types.FieldWorkflowPhase)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", types.FieldWorkflowPhase, err)
	}
	if stored != nil {
		r.unchanged(types.FieldWorkflowPhase, stored.String(), "phase already set")
		return nil
	}
	opt, ok := r.sch.PhaseOption(types.PhaseDiscovery)
	if !ok {
		r.log.Debug("no discovery phase in schema")
		return nil
	}
	return r.writeChoice(ctx, r.itemID, types.FieldWorkflowPhase, opt.OptionID, opt.Name, "no phase set")
}

// syncChoices writes each token-backed choice that differs from the board.
// It returns the choices stored before any write, for input resolution.
func (r *run) syncChoices(ctx context.Context, markers tokens.Markers) (propagate.Values, error) {
	stored := make(propagate.Values, len(schema.TokenFields))
	for _, f := range schema.TokenFields {
		current, err := r.e.Board.ReadChoice(ctx, r.itemID, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		stored[f] = current

		opt, ok := markers.Choice(f)
		if !ok {
			r.missing(f, "no token found")
			continue
		}
		if f == types.FieldSize {
			r.log.Debug("effort from token", "token", opt.Token, "effort", opt.Value)
		}
		d := rice.GateChoice(opt.OptionID, current)
		if !d.ShouldWrite {
			r.unchanged(f, opt.Name, d.Reason)
			continue
		}
		if err := r.writeChoice(ctx, r.itemID, f, d.Value, opt.Name, d.Reason); err != nil {
			return nil, err
		}
	}
	return stored, nil
}

// syncReach writes the reach read from the body and returns the reach now
// on the board.
func (r *run) syncReach(ctx context.Context, reach tokens.Reach) (*float64, error) {
	switch {
	case reach.ParseFailed():
		r.missing(types.FieldReach, "reach did not parse", "line", reach.Line)
	case !reach.Value.Defined():
		r.missing(types.FieldReach, "no reach in body")
	default:
		current, err := r.e.Board.ReadNumber(ctx, r.itemID, types.FieldReach)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", types.FieldReach, err)
		}
		d := rice.GateNumber(reach.Value.Num, current)
		if d.ShouldWrite {
			if err := r.writeNumber(ctx, types.FieldReach, d.Value, d.Reason); err != nil {
				return nil, err
			}
		} else {
			r.unchanged(types.FieldReach, reach.Line, d.Reason)
		}
	}

	stored, err := r.e.Board.ReadNumber(ctx, r.itemID, types.FieldReach)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", types.FieldReach, err)
	}
	return stored, nil
}

// score resolves the inputs, writes the RICE score and, when the score
// changed, the priority tier.
func (r *run) score(ctx context.Context, reach *float64, markers tokens.Markers, stored propagate.Values) error {
	candidates := func(f types.Field) rice.Candidates {
		return rice.Candidates{Token: markers.Number(f), Stored: stored[f], Table: r.sch.Vocabulary(f)}
	}
	in := rice.Resolve(reach, candidates(types.FieldImpact), candidates(types.FieldConfidence), candidates(types.FieldSize))
	r.res.Inputs = in
	r.log.Debug("score inputs",
		"reach", in.Reach.String(),
		"impact", in.Impact.String(),
		"confidence", in.Confidence.String(),
		"effort", in.Effort.String(),
	)

	score := rice.Compute(in)
	r.res.Score = score
	if !score.Defined() {
		r.missing(types.FieldRICE, "reach or impact missing, not scoring")
		return nil
	}
	r.inst.recordScore(ctx, score.Value, score.Formula.String())

	current, err := r.e.Board.ReadNumber(ctx, r.itemID, types.FieldRICE)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", types.FieldRICE, err)
	}
	sd := rice.GateNumber(score.Value, current)
	if sd.ShouldWrite {
		if err := r.writeNumber(ctx, types.FieldRICE, sd.Value, sd.Reason+", "+score.Formula.String()+" formula"); err != nil {
			return err
		}
	} else {
		r.unchanged(types.FieldRICE, strconv.FormatFloat(score.Value, 'f', -1, 64), sd.Reason)
	}

	rule, err := rice.NewClassifier(r.sch).Classify(score.Value)
	if err != nil {
		return fmt.Errorf("failed to classify score %v: %w", score.Value, err)
	}
	r.res.Tier = rule.Tier

	prio, err := r.e.Board.ReadChoice(ctx, r.itemID, types.FieldPriority)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", types.FieldPriority, err)
	}
	storedTier := types.TierNone
	if prio != nil {
		if t, ok := r.sch.TierByOptionID(prio.OptionID); ok {
			storedTier = t
		}
	}
	td := rice.GateTier(rule.Tier, storedTier, sd.ShouldWrite)
	if !td.ShouldWrite {
		r.unchanged(types.FieldPriority, rule.Name, td.Reason)
		return nil
	}
	return r.writeChoice(ctx, r.itemID, types.FieldPriority, rule.OptionID, rule.Name, td.Reason)
}

func (r *run) stripBody(ctx context.Context, body string) error {
	stripped := bodytext.StripSections(body, r.sch.StripSections)
	if stripped == body {
		return nil
	}
	if err := r.e.Board.RewriteItemBody(ctx, r.res.Issue, stripped); err != nil {
		return fmt.Errorf("failed to rewrite body of #%d: %w", r.res.Issue, err)
	}
	r.log.Info("form sections removed from body", "before", len(body), "after", len(stripped))
	return nil
}

// CopyFromParent fills a sub-issue's unset board fields from its parent and
// sets its workflow phase from its labels or title prefix. A child keeps
// any value it already has. Issues without a parent, or where either item
// is not on the board, are skipped.
func (e *Engine) CopyFromParent(ctx context.Context, child int) (res *Result, err error) {
	r := e.newRun(KindChild, child)
	defer func() { r.inst.recordRun(ctx, res, err) }()

	parent, ok, err := e.Board.ParentOf(ctx, child)
	if err != nil {
		return r.res, fmt.Errorf("failed to read parent of #%d: %w", child, err)
	}
	if !ok {
		r.log.Info("issue has no parent, skipping")
		return r.res.skip("no parent"), nil
	}
	r.res.Parent = parent
	r.log = r.log.With("parent", parent)

	childItem, ok, err := r.locate(ctx, child)
	if err != nil {
		return r.res, err
	}
	if !ok {
		r.log.Info("child is not on the project board, skipping")
		return r.res.skip("child not on board"), nil
	}
	parentItem, ok, err := r.locate(ctx, parent)
	if err != nil {
		return r.res, err
	}
	if !ok {
		r.log.Info("parent is not on the project board, skipping")
		return r.res.skip("parent not on board"), nil
	}
	r.itemID = childItem
	r.res.ItemID = childItem
	r.log = r.log.With("item", childItem)
	r.invalidate(childItem)
	r.invalidate(parentItem)

	parentValues := make(propagate.Values, len(r.sch.CopyFields))
	childValues := make(propagate.Values, len(r.sch.CopyFields))
	for _, f := range r.sch.CopyFields {
		if parentValues[f], err = e.Board.ReadChoice(ctx, parentItem, f); err != nil {
			return r.res, fmt.Errorf("failed to read parent %s: %w", f, err)
		}
		if childValues[f], err = e.Board.ReadChoice(ctx, childItem, f); err != nil {
			return r.res, fmt.Errorf("failed to read child %s: %w", f, err)
		}
	}

	for _, d := range propagate.Plan(r.sch.CopyFields, parentValues, childValues) {
		switch d.Outcome {
		case propagate.OutcomeAdopt:
			if err := r.writeChoice(ctx, childItem, d.Field, d.Value.OptionID, d.Value.String(), "adopted from parent"); err != nil {
				return r.res, err
			}
		case propagate.OutcomeChildSet:
			r.unchanged(d.Field, d.Value.String(), "child already set")
		default:
			r.missing(d.Field, "parent has no value")
		}
	}

	text, err := e.Board.ReadItemText(ctx, child)
	if err != nil {
		return r.res, fmt.Errorf("failed to read issue #%d: %w", child, err)
	}
	phase, ok := propagate.InferPhase(r.sch, text.Labels, text.Title)
	if !ok {
		r.missing(types.FieldWorkflowPhase, "no phase label or title prefix")
	} else if err := r.writeChoice(ctx, childItem, types.FieldWorkflowPhase, phase.OptionID, phase.Name, "inferred from template"); err != nil {
		return r.res, err
	}

	r.log.Info("child synced", "written", r.res.Stats.Written, "unchanged", r.res.Stats.Unchanged)
	return r.res, nil
}
