// Package propagate decides which classification fields a child item adopts
// from its parent and which workflow phase a child belongs in.
package propagate

import (
	"strings"

	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/types"
)

// Outcome explains a propagation decision.
type Outcome int

// Propagation outcomes
const (
	OutcomeAdopt       Outcome = iota // child takes the parent's option
	OutcomeParentUnset                // nothing to copy
	OutcomeChildSet                   // child already has an opinion
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdopt:
		return "adopt"
	case OutcomeParentUnset:
		return "parent unset"
	case OutcomeChildSet:
		return "child already set"
	default:
		return "unknown"
	}
}

// Decision is the propagation result for one field.
type Decision struct {
	Field   types.Field
	Value   types.Choice
	Outcome Outcome
}

// ShouldWrite reports whether the child must be written.
func (d Decision) ShouldWrite() bool { return d.Outcome == OutcomeAdopt }

// Decide applies the adopt-once rule: a child with any value keeps it, and
// an unset child adopts the parent's value when the parent has one.
func Decide(f types.Field, parent, child *types.Choice) Decision {
	switch {
	case parent == nil || parent.OptionID == "":
		return Decision{Field: f, Outcome: OutcomeParentUnset}
	case child != nil && child.OptionID != "":
		return Decision{Field: f, Value: *child, Outcome: OutcomeChildSet}
	}
	return Decision{Field: f, Value: *parent, Outcome: OutcomeAdopt}
}

// Values holds stored choices keyed by field. A missing key means unset.
type Values map[types.Field]*types.Choice

// Plan decides every field in fields, in order.
func Plan(fields []types.Field, parent, child Values) []Decision {
	decisions := make([]Decision, 0, len(fields))
	for _, f := range fields {
		decisions = append(decisions, Decide(f, parent[f], child[f]))
	}
	return decisions
}

// InferPhase maps a child's labels, then its title prefix, to a workflow
// phase option. Labels are checked against every phase before any title
// prefix is considered.
func InferPhase(s *schema.Schema, labels []string, title string) (schema.PhaseOption, bool) {
	for _, p := range s.Phases {
		for _, want := range p.Labels {
			for _, l := range labels {
				if strings.EqualFold(strings.TrimSpace(l), want) {
					return p, true
				}
			}
		}
	}
	title = strings.TrimSpace(title)
	for _, p := range s.Phases {
		for _, prefix := range p.TitlePrefixes {
			if strings.HasPrefix(strings.ToLower(title), strings.ToLower(prefix)) {
				return p, true
			}
		}
	}
	return schema.PhaseOption{}, false
}
