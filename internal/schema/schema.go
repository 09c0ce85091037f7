// Package schema describes the project board that boardsync writes to:
// field IDs, single-select options, marker token vocabularies, numeric
// tables and priority thresholds.
//
// Everything that identifies the production board lives here as data so the
// scoring and propagation logic can be exercised against synthetic boards.
// Default returns the production board; Load reads an override from a YAML
// or TOML file.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/steveyegge/boardsync/internal/types"
)

// ErrInvalid is returned (wrapped) when a schema fails validation.
var ErrInvalid = errors.New("invalid board schema")

// FieldDef identifies a board field.
type FieldDef struct {
	ID   string `yaml:"id" toml:"id"`
	Name string `yaml:"name" toml:"name"`
}

// Option is one single-select option together with the marker token that
// selects it from issue text. Value is only meaningful for the numeric
// categories (impact, confidence, size).
type Option struct {
	Token    string  `yaml:"token" toml:"token"`
	OptionID string  `yaml:"option_id" toml:"option_id"`
	Name     string  `yaml:"name,omitempty" toml:"name"`
	Value    float64 `yaml:"value,omitempty" toml:"value"`
}

// Choice returns the option as a stored choice.
func (o Option) Choice() types.Choice {
	return types.Choice{OptionID: o.OptionID, Name: o.Name}
}

// Vocabulary is an ordered list of options. Order is significant: when
// several tokens occur in the same text, the earliest declared one wins.
type Vocabulary []Option

// ByToken looks up an option by its marker token.
func (v Vocabulary) ByToken(token string) (Option, bool) {
	for _, o := range v {
		if o.Token == token {
			return o, true
		}
	}
	return Option{}, false
}

// ByOptionID looks up an option by its board option ID.
func (v Vocabulary) ByOptionID(id string) (Option, bool) {
	for _, o := range v {
		if o.OptionID == id {
			return o, true
		}
	}
	return Option{}, false
}

// TierRule maps a lower-inclusive score threshold to a priority option.
// Manual rules (Urgent) are known to the board but never assigned from a score.
type TierRule struct {
	Tier     types.Tier `yaml:"tier" toml:"tier"`
	Min      float64    `yaml:"min" toml:"min"`
	OptionID string     `yaml:"option_id" toml:"option_id"`
	Name     string     `yaml:"name,omitempty" toml:"name"`
	Manual   bool       `yaml:"manual,omitempty" toml:"manual"`
}

// PhaseOption is a workflow phase option plus the rules that infer it
// from a child issue's labels or title.
type PhaseOption struct {
	Phase         types.Phase `yaml:"phase" toml:"phase"`
	OptionID      string      `yaml:"option_id" toml:"option_id"`
	Name          string      `yaml:"name,omitempty" toml:"name"`
	Labels        []string    `yaml:"labels,omitempty" toml:"labels"`
	TitlePrefixes []string    `yaml:"title_prefixes,omitempty" toml:"title_prefixes"`
}

// Schema is the full board description.
type Schema struct {
	ProjectID     string                    `yaml:"project_id" toml:"project_id"`
	ProjectNumber int                       `yaml:"project_number" toml:"project_number"`
	Fields        map[types.Field]FieldDef `yaml:"fields" toml:"fields"`

	Impact     Vocabulary `yaml:"impact" toml:"impact"`
	Confidence Vocabulary `yaml:"confidence" toml:"confidence"`
	Size       Vocabulary `yaml:"size" toml:"size"`
	Squad      Vocabulary `yaml:"squad" toml:"squad"`
	NSM        Vocabulary `yaml:"nsm" toml:"nsm"`
	OKR        Vocabulary `yaml:"okr" toml:"okr"`

	Priority []TierRule    `yaml:"priority" toml:"priority"`
	Phases   []PhaseOption `yaml:"phases" toml:"phases"`

	// ReachLabel is the issue-form section header whose next line holds the reach estimate.
	ReachLabel string `yaml:"reach_label" toml:"reach_label"`

	// StripSections are issue-form section headers removed from the body after a sync.
	StripSections []string `yaml:"strip_sections,omitempty" toml:"strip_sections"`

	// CopyFields are the single-select fields a child adopts from its parent.
	CopyFields []types.Field `yaml:"copy_fields" toml:"copy_fields"`

	// InitiativeLabels mark an issue as an initiative (scored item).
	InitiativeLabels []string `yaml:"initiative_labels,omitempty" toml:"initiative_labels"`

	// InitiativeTypes are GitHub issue type names that mark an initiative.
	InitiativeTypes []string `yaml:"initiative_types,omitempty" toml:"initiative_types"`
}

// FieldID returns the board field ID for f, or "" if unmapped.
func (s *Schema) FieldID(f types.Field) string {
	return s.Fields[f].ID
}

// FieldName returns the board display name for f.
func (s *Schema) FieldName(f types.Field) string {
	if def, ok := s.Fields[f]; ok && def.Name != "" {
		return def.Name
	}
	return string(f)
}

// FieldByID maps a board field ID back to a Field.
func (s *Schema) FieldByID(id string) (types.Field, bool) {
	for f, def := range s.Fields {
		if def.ID == id {
			return f, true
		}
	}
	return "", false
}

// Vocabulary returns the token vocabulary for a select field, or nil for
// fields that are not set from tokens.
func (s *Schema) Vocabulary(f types.Field) Vocabulary {
	switch f {
	case types.FieldImpact:
		return s.Impact
	case types.FieldConfidence:
		return s.Confidence
	case types.FieldSize:
		return s.Size
	case types.FieldSquad:
		return s.Squad
	case types.FieldNSM:
		return s.NSM
	case types.FieldOKR:
		return s.OKR
	}
	return nil
}

// TokenFields lists the fields that markers in issue text can set, in the
// order the initiative sync applies them.
var TokenFields = []types.Field{
	types.FieldNSM,
	types.FieldSquad,
	types.FieldOKR,
	types.FieldImpact,
	types.FieldConfidence,
	types.FieldSize,
}

// AutoTiers returns the non-manual tier rules ordered by descending threshold.
func (s *Schema) AutoTiers() []TierRule {
	var rules []TierRule
	for _, r := range s.Priority {
		if !r.Manual {
			rules = append(rules, r)
		}
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Min > rules[j].Min })
	return rules
}

// TierByOptionID maps a stored Priority option back to its tier.
func (s *Schema) TierByOptionID(id string) (types.Tier, bool) {
	for _, r := range s.Priority {
		if r.OptionID == id {
			return r.Tier, true
		}
	}
	return types.TierNone, false
}

// TierRule returns the rule for a tier.
func (s *Schema) TierRule(t types.Tier) (TierRule, bool) {
	for _, r := range s.Priority {
		if r.Tier == t {
			return r, true
		}
	}
	return TierRule{}, false
}

// PhaseOption returns the option for a workflow phase.
func (s *Schema) PhaseOption(p types.Phase) (PhaseOption, bool) {
	for _, o := range s.Phases {
		if o.Phase == p {
			return o, true
		}
	}
	return PhaseOption{}, false
}

// IsInitiative reports whether an issue with these labels and type is scored.
func (s *Schema) IsInitiative(labels []string, issueType string) bool {
	for _, t := range s.InitiativeTypes {
		if strings.EqualFold(t, issueType) {
			return true
		}
	}
	for _, want := range s.InitiativeLabels {
		for _, l := range labels {
			if l == want {
				return true
			}
		}
	}
	return false
}

// Validate checks that the schema is internally consistent.
func (s *Schema) Validate() error {
	var problems []string
	addf := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if s.ProjectID == "" {
		addf("project_id is required")
	}
	for _, f := range types.AllFields {
		if s.FieldID(f) == "" {
			addf("fields.%s.id is required", f)
		}
	}
	for f := range s.Fields {
		if !f.IsValid() {
			addf("unknown field %q", f)
		}
	}

	for _, f := range TokenFields {
		vocab := s.Vocabulary(f)
		if len(vocab) == 0 {
			addf("%s: at least one option is required", f)
		}
		tokens := make(map[string]bool, len(vocab))
		ids := make(map[string]bool, len(vocab))
		for i, o := range vocab {
			if strings.TrimSpace(o.Token) == "" {
				addf("%s[%d]: token is required", f, i)
			}
			if o.OptionID == "" {
				addf("%s[%d]: option_id is required", f, i)
			}
			if tokens[o.Token] {
				addf("%s: duplicate token %q", f, o.Token)
			}
			if ids[o.OptionID] {
				addf("%s: duplicate option_id %q", f, o.OptionID)
			}
			tokens[o.Token] = true
			ids[o.OptionID] = true
			switch f {
			case types.FieldImpact, types.FieldSize:
				if o.Value < 0 {
					addf("%s %q: value must be >= 0", f, o.Token)
				}
			case types.FieldConfidence:
				if o.Value <= 0 || o.Value > 1 {
					addf("%s %q: value must be in (0, 1]", f, o.Token)
				}
			}
		}
	}

	auto := s.AutoTiers()
	if len(auto) == 0 {
		addf("priority: at least one automatic tier is required")
	} else {
		if lowest := auto[len(auto)-1]; lowest.Min > 0 {
			addf("priority: lowest tier %s starts at %v; it must catch every score from 0", lowest.Tier, lowest.Min)
		}
		for i := 1; i < len(auto); i++ {
			if auto[i].Min == auto[i-1].Min {
				addf("priority: tiers %s and %s share threshold %v", auto[i].Tier, auto[i-1].Tier, auto[i].Min)
			}
			if auto[i].Tier >= auto[i-1].Tier {
				addf("priority: tier %s must rank below %s", auto[i].Tier, auto[i-1].Tier)
			}
		}
	}
	for i, r := range s.Priority {
		if !r.Tier.IsValid() {
			addf("priority[%d]: invalid tier", i)
		}
		if r.OptionID == "" {
			addf("priority[%d]: option_id is required", i)
		}
	}

	for i, p := range s.Phases {
		if !p.Phase.IsValid() {
			addf("phases[%d]: unknown phase %q", i, p.Phase)
		}
		if p.OptionID == "" {
			addf("phases[%d]: option_id is required", i)
		}
	}
	if _, ok := s.PhaseOption(types.PhaseDiscovery); !ok {
		addf("phases: discovery is required")
	}

	if strings.TrimSpace(s.ReachLabel) == "" {
		addf("reach_label is required")
	}
	for _, f := range s.CopyFields {
		if !f.IsValid() {
			addf("copy_fields: unknown field %q", f)
		} else if f.IsNumber() {
			addf("copy_fields: %s is not a single-select field", f)
		} else if f == types.FieldWorkflowPhase {
			addf("copy_fields: workflow_phase is inferred per child and cannot be copied")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(problems, "\n  "))
	}
	return nil
}

// Holder publishes the active schema to concurrent readers. The serve
// command swaps in a new schema when the file changes.
type Holder struct {
	v atomic.Pointer[Schema]
}

// NewHolder returns a holder primed with s.
func NewHolder(s *Schema) *Holder {
	h := &Holder{}
	h.v.Store(s)
	return h
}

// Get returns the current schema.
func (h *Holder) Get() *Schema { return h.v.Load() }

// Set replaces the current schema.
func (h *Holder) Set(s *Schema) { h.v.Store(s) }
