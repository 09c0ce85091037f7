// Package rice resolves score inputs, computes RICE scores, classifies them
// into priority tiers and decides whether derived values need writing.
//
// Everything here is pure. Callers read the board, hand the values in, and
// execute the returned decisions.
package rice

import (
	"math"

	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/types"
)

// Epsilon is the absolute difference below which two scores are equal.
const Epsilon = 1e-6

// Inputs are the resolved score inputs.
type Inputs struct {
	Reach      types.Value
	Impact     types.Value
	Confidence types.Value
	Effort     types.Value
}

// Resolve picks one value per input. A token wins over the number implied
// by the stored option, which wins over nothing. Reach only ever comes from
// the stored number.
func Resolve(reach *float64, impact, confidence, effort Candidates) Inputs {
	in := Inputs{
		Impact:     impact.Resolve(),
		Confidence: confidence.Resolve(),
		Effort:     effort.Resolve(),
	}
	if reach != nil {
		in.Reach = types.FromStore(*reach)
	}
	return in
}

// Candidates are the competing sources for one select-backed input.
type Candidates struct {
	Token types.Value
	// Stored is the option currently on the board, looked up in Table.
	Stored *types.Choice
	Table  schema.Vocabulary
}

// Resolve applies token → stored precedence.
func (c Candidates) Resolve() types.Value {
	if c.Token.Defined() {
		return types.FromToken(c.Token.Num)
	}
	if c.Stored != nil {
		if o, ok := c.Table.ByOptionID(c.Stored.OptionID); ok {
			return types.FromStore(o.Value)
		}
	}
	return types.Undefined
}

// Formula identifies which RICE variant produced a score.
type Formula int

// Score formulas
const (
	FormulaNone    Formula = iota // reach or impact missing
	FormulaPartial                // reach × impact
	FormulaFull                   // reach × impact × confidence ÷ effort
)

func (f Formula) String() string {
	switch f {
	case FormulaPartial:
		return "partial"
	case FormulaFull:
		return "full"
	default:
		return "none"
	}
}

// MarshalText encodes the formula by name.
func (f Formula) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Score is a computed RICE score. Value is rounded to two decimals.
type Score struct {
	Value   float64 `json:"value"`
	Formula Formula `json:"formula"`
}

// Defined reports whether a score was produced.
func (s Score) Defined() bool { return s.Formula != FormulaNone }

// Compute scores the inputs. Missing reach or impact gives no score; a
// missing confidence or effort, or zero effort, falls back to reach × impact.
func Compute(in Inputs) Score {
	if !in.Reach.Defined() || !in.Impact.Defined() {
		return Score{Formula: FormulaNone}
	}
	if in.Confidence.Defined() && in.Effort.Defined() && in.Effort.Num > 0 {
		return Score{
			Value:   Round2(in.Reach.Num * in.Impact.Num * in.Confidence.Num / in.Effort.Num),
			Formula: FormulaFull,
		}
	}
	return Score{Value: Round2(in.Reach.Num * in.Impact.Num), Formula: FormulaPartial}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Classifier maps scores to tiers using a schema's automatic tier rules.
type Classifier struct {
	rules []schema.TierRule
}

// NewClassifier builds a classifier from the schema's non-manual tiers.
func NewClassifier(s *schema.Schema) *Classifier {
	return &Classifier{rules: s.AutoTiers()}
}

// Classify returns the tier rule for score. Negative scores have no tier.
// A non-negative score that matches nothing returns types.ErrNoMatchingTier,
// which a validated schema never produces.
func (c *Classifier) Classify(score float64) (schema.TierRule, error) {
	if score < 0 || math.IsNaN(score) {
		return schema.TierRule{Tier: types.TierNone}, nil
	}
	for _, r := range c.rules {
		if score >= r.Min {
			return r, nil
		}
	}
	return schema.TierRule{Tier: types.TierNone}, types.ErrNoMatchingTier
}
