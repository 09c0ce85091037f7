// Package engine runs the board automations: scoring and classifying
// initiatives, copying fields from parent issues, and batch resyncs.
package engine

import (
	"github.com/steveyegge/boardsync/internal/rice"
	"github.com/steveyegge/boardsync/internal/types"
)

// Kind is the automation a run performed.
type Kind string

// Run kinds
const (
	KindInitiative Kind = "initiative"
	KindChild      Kind = "child"
	KindIgnored    Kind = "ignored"
)

// Change is one field decision made during a run.
type Change struct {
	Field   types.Field `json:"field"`
	Value   string      `json:"value,omitempty"`
	Written bool        `json:"written"`
	Reason  string      `json:"reason"`
}

// Stats counts what a run did.
type Stats struct {
	Written   int `json:"written"`   // Fields written to the board
	Unchanged int `json:"unchanged"` // Fields already holding the computed value
	Missing   int `json:"missing"`   // Inputs with no information
}

// Result is the outcome of one run.
type Result struct {
	RunID  string `json:"run_id"`
	Kind   Kind   `json:"kind"`
	Issue  int    `json:"issue"`
	ItemID string `json:"item_id,omitempty"`

	// Skipped is set when the run stopped early without error, for example
	// because the issue is not on the board.
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`

	// Initiative runs only.
	Inputs rice.Inputs `json:"-"`
	Score  rice.Score  `json:"score"`
	Tier   types.Tier  `json:"tier"`

	// Child runs only.
	Parent int `json:"parent,omitempty"`

	Changes []Change `json:"changes,omitempty"`
	Stats   Stats    `json:"stats"`
}

func (r *Result) skip(reason string) *Result {
	r.Skipped = true
	r.SkipReason = reason
	return r
}

func (r *Result) record(c Change) {
	r.Changes = append(r.Changes, c)
	if c.Written {
		r.Stats.Written++
	} else {
		r.Stats.Unchanged++
	}
}

// Change returns the last change recorded for f.
func (r *Result) Change(f types.Field) (Change, bool) {
	for i := len(r.Changes) - 1; i >= 0; i-- {
		if r.Changes[i].Field == f {
			return r.Changes[i], true
		}
	}
	return Change{}, false
}

// Failure is a run that returned an error during a batch.
type Failure struct {
	Issue int    `json:"issue"`
	Error string `json:"error"`
}

// BatchResult is the outcome of a Resync.
type BatchResult struct {
	Results  []*Result `json:"results"`
	Failures []Failure `json:"failures,omitempty"`
	Ignored  int       `json:"ignored"`
}

// Written sums the writes made across all runs.
func (b *BatchResult) Written() int {
	n := 0
	for _, r := range b.Results {
		n += r.Stats.Written
	}
	return n
}
