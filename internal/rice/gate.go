package rice

import (
	"fmt"
	"math"

	"github.com/steveyegge/boardsync/internal/types"
)

// Decision is the outcome of a change gate: the value to write and whether
// writing it is needed. Reason is a short human-readable explanation for logs.
type Decision[T any] struct {
	Value       T
	ShouldWrite bool
	Reason      string
}

// GateNumber decides whether next must be written over stored. A missing
// stored value always writes.
func GateNumber(next float64, stored *float64) Decision[float64] {
	if stored == nil {
		return Decision[float64]{Value: next, ShouldWrite: true, Reason: "no stored value"}
	}
	if math.Abs(next-*stored) > Epsilon {
		return Decision[float64]{Value: next, ShouldWrite: true, Reason: fmt.Sprintf("changed from %v", *stored)}
	}
	return Decision[float64]{Value: next, Reason: "unchanged"}
}

// GateChoice decides whether optionID must be written over stored.
func GateChoice(optionID string, stored *types.Choice) Decision[string] {
	if stored == nil {
		return Decision[string]{Value: optionID, ShouldWrite: true, Reason: "no stored value"}
	}
	if stored.OptionID != optionID {
		return Decision[string]{Value: optionID, ShouldWrite: true, Reason: fmt.Sprintf("changed from %s", stored)}
	}
	return Decision[string]{Value: optionID, Reason: "unchanged"}
}

// GateTier decides whether a computed tier must be written. An absent tier
// is always filled; an existing one is only replaced when the score itself
// changed, so a manual Urgent survives reruns. stored is TierNone when the
// board holds no (recognised) priority.
func GateTier(next types.Tier, stored types.Tier, scoreChanged bool) Decision[types.Tier] {
	switch {
	case !next.IsValid():
		return Decision[types.Tier]{Value: next, Reason: "no tier for score"}
	case !stored.IsValid():
		return Decision[types.Tier]{Value: next, ShouldWrite: true, Reason: "no stored tier"}
	case !scoreChanged:
		return Decision[types.Tier]{Value: next, Reason: "score unchanged"}
	case stored != next:
		return Decision[types.Tier]{Value: next, ShouldWrite: true, Reason: fmt.Sprintf("changed from %s", stored)}
	}
	return Decision[types.Tier]{Value: next, Reason: "unchanged"}
}
