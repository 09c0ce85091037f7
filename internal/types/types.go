// Package types defines core data structures for boardsync.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Field identifies a tracked attribute on a project board item.
// The board-specific field ID for each Field lives in the schema.
type Field string

// Board fields
const (
	FieldStatus        Field = "status"
	FieldWorkflowPhase Field = "workflow_phase"
	FieldNSM           Field = "nsm"
	FieldOKR           Field = "okr"
	FieldSquad         Field = "squad"
	FieldReach         Field = "reach"
	FieldImpact        Field = "impact"
	FieldConfidence    Field = "confidence"
	FieldSize          Field = "size"
	FieldRICE          Field = "rice"
	FieldPriority      Field = "priority"
)

// AllFields lists every board field in display order.
var AllFields = []Field{
	FieldStatus,
	FieldWorkflowPhase,
	FieldNSM,
	FieldOKR,
	FieldSquad,
	FieldReach,
	FieldImpact,
	FieldConfidence,
	FieldSize,
	FieldRICE,
	FieldPriority,
}

// IsValid checks if the field is one of the known board fields
func (f Field) IsValid() bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}

// IsNumber reports whether the field stores a number rather than a single-select option.
func (f Field) IsNumber() bool {
	return f == FieldReach || f == FieldRICE
}

// Choice is the stored value of a single-select field.
type Choice struct {
	OptionID string `json:"option_id"`
	Name     string `json:"name,omitempty"`
}

func (c Choice) String() string {
	if c.Name != "" {
		return c.Name
	}
	return c.OptionID
}

// Source records where a resolved value came from.
type Source int

// Value provenance. Exactly one source contributes to a resolved value.
const (
	SourceNone  Source = iota // no information
	SourceToken               // extracted from issue text
	SourceStore               // already persisted on the board item
)

func (s Source) String() string {
	switch s {
	case SourceToken:
		return "token"
	case SourceStore:
		return "store"
	default:
		return "none"
	}
}

// Value is an optional number tagged with its provenance.
// The zero Value is undefined.
type Value struct {
	Num    float64
	Source Source
}

// Undefined is the "no information" value.
var Undefined = Value{}

// FromToken returns a value extracted from issue text.
func FromToken(n float64) Value { return Value{Num: n, Source: SourceToken} }

// FromStore returns a value read from the board.
func FromStore(n float64) Value { return Value{Num: n, Source: SourceStore} }

// Defined reports whether the value carries information.
func (v Value) Defined() bool { return v.Source != SourceNone }

func (v Value) String() string {
	if !v.Defined() {
		return "undefined"
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64) + " (" + v.Source.String() + ")"
}

// Tier is the ordinal priority classification derived from a RICE score.
// Higher tiers sort after lower ones.
type Tier int

// Priority tiers. TierUrgent exists on the board but is never assigned
// automatically.
const (
	TierNone Tier = iota - 1
	TierVeryLow
	TierLow
	TierMedium
	TierHigh
	TierVeryHigh
	TierUrgent
)

// IsValid checks if the tier is a concrete tier
func (t Tier) IsValid() bool {
	return t >= TierVeryLow && t <= TierUrgent
}

func (t Tier) String() string {
	switch t {
	case TierVeryLow:
		return "very_low"
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	case TierVeryHigh:
		return "very_high"
	case TierUrgent:
		return "urgent"
	default:
		return "none"
	}
}

// ParseTier converts a tier name to a Tier.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "very_low", "very-low":
		return TierVeryLow, nil
	case "low":
		return TierLow, nil
	case "medium":
		return TierMedium, nil
	case "high":
		return TierHigh, nil
	case "very_high", "very-high":
		return TierVeryHigh, nil
	case "urgent":
		return TierUrgent, nil
	}
	return TierNone, fmt.Errorf("unknown tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so tiers can be
// written by name in schema files.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Phase is the workflow phase of a board item.
type Phase string

// Workflow phases
const (
	PhaseDiscovery      Phase = "discovery"
	PhaseDesign         Phase = "design"
	PhaseImplementation Phase = "implementation"
	PhaseResults        Phase = "results"
	PhaseDone           Phase = "done"
)

// IsValid checks if the phase value is valid
func (p Phase) IsValid() bool {
	switch p {
	case PhaseDiscovery, PhaseDesign, PhaseImplementation, PhaseResults, PhaseDone:
		return true
	}
	return false
}

// IssueText is the free text of an issue that markers are read from.
type IssueText struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// ErrNoMatchingTier is an internal-consistency failure: a defined,
// non-negative score matched no threshold. A validated schema always has a
// catch-all lowest tier, so this indicates a broken schema.
var ErrNoMatchingTier = errors.New("no priority tier matches score")
