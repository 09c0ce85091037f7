package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/steveyegge/boardsync/internal/rice"
	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/types"
	"github.com/steveyegge/boardsync/internal/ui"
)

var scoreCmd = &cobra.Command{
	Use:     "score",
	GroupID: "tools",
	Short:   "Compute a RICE score and priority tier without touching the board",
	Long: `Computes the RICE score and priority tier for the given inputs using the
active schema. Impact, confidence and size accept a token (impact-high), the
part after the prefix (high) or the option name.

  boardsync score --reach 1000 --impact high --confidence 80 --size small
  boardsync score --interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, err := loadSchema()
		if err != nil {
			return err
		}
		s := holder.Get()

		var in scoreInput
		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			if in, err = promptScoreInput(s); err != nil {
				return err
			}
		} else {
			in.Impact, _ = cmd.Flags().GetString("impact")
			in.Confidence, _ = cmd.Flags().GetString("confidence")
			in.Size, _ = cmd.Flags().GetString("size")
			if cmd.Flags().Changed("reach") {
				r, _ := cmd.Flags().GetFloat64("reach")
				in.Reach = &r
			}
		}

		out, err := scoreOffline(s, in)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(out)
			return nil
		}
		printScore(os.Stdout, s, out)
		return nil
	},
}

// scoreInput is what the user typed: a reach number and option names.
type scoreInput struct {
	Reach      *float64
	Impact     string
	Confidence string
	Size       string
}

// scoreOutput is the offline scoring result.
type scoreOutput struct {
	Inputs rice.Inputs `json:"-"`
	Score  rice.Score  `json:"score"`
	Tier   types.Tier  `json:"tier"`
}

// scoreOffline resolves the named options and scores them.
func scoreOffline(s *schema.Schema, in scoreInput) (*scoreOutput, error) {
	var problems []string
	candidate := func(v schema.Vocabulary, prefix, name string) rice.Candidates {
		if name == "" {
			return rice.Candidates{}
		}
		o, ok := lookupOption(v, prefix, name)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown %s %q", prefix, name))
			return rice.Candidates{}
		}
		return rice.Candidates{Token: types.FromToken(o.Value)}
	}

	if in.Reach != nil && *in.Reach < 0 {
		problems = append(problems, "reach must not be negative")
	}
	impact := candidate(s.Impact, "impact", in.Impact)
	confidence := candidate(s.Confidence, "confidence", in.Confidence)
	effort := candidate(s.Size, "effort", in.Size)
	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "; "))
	}

	out := &scoreOutput{Tier: types.TierNone}
	out.Inputs = rice.Resolve(in.Reach, impact, confidence, effort)
	out.Score = rice.Compute(out.Inputs)
	if out.Score.Defined() {
		rule, err := rice.NewClassifier(s).Classify(out.Score.Value)
		if err != nil {
			return nil, err
		}
		out.Tier = rule.Tier
	}
	return out, nil
}

// lookupOption finds an option by token, by token suffix after prefix, or
// by display name.
func lookupOption(v schema.Vocabulary, prefix, name string) (schema.Option, bool) {
	name = strings.TrimSpace(name)
	if o, ok := v.ByToken(name); ok {
		return o, true
	}
	if o, ok := v.ByToken(prefix + "-" + strings.ToLower(name)); ok {
		return o, true
	}
	for _, o := range v {
		if strings.EqualFold(strings.TrimSpace(o.Name), name) {
			return o, true
		}
	}
	return schema.Option{}, false
}

func promptScoreInput(s *schema.Schema) (scoreInput, error) {
	var in scoreInput
	var reach string
	options := func(v schema.Vocabulary) []huh.Option[string] {
		opts := []huh.Option[string]{huh.NewOption("(none)", "")}
		for _, o := range v {
			opts = append(opts, huh.NewOption(o.Name, o.Token))
		}
		return opts
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Reach").
				Description("People affected per quarter (blank if unknown)").
				Value(&reach).
				Validate(func(v string) error {
					if v == "" {
						return nil
					}
					if f, err := strconv.ParseFloat(v, 64); err != nil || f < 0 {
						return errors.New("enter a non-negative number")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Impact").Options(options(s.Impact)...).Value(&in.Impact),
			huh.NewSelect[string]().Title("Confidence").Options(options(s.Confidence)...).Value(&in.Confidence),
			huh.NewSelect[string]().Title("Size").Options(options(s.Size)...).Value(&in.Size),
		),
	)
	if err := form.Run(); err != nil {
		return in, err
	}
	if reach != "" {
		r, _ := strconv.ParseFloat(reach, 64)
		in.Reach = &r
	}
	return in, nil
}

var scoreBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ui.ColorAccent).
	Padding(0, 1)

func printScore(w io.Writer, s *schema.Schema, out *scoreOutput) {
	var b strings.Builder
	row := func(label string, v types.Value) {
		val := ui.RenderMuted("-")
		if v.Defined() {
			val = strconv.FormatFloat(v.Num, 'f', -1, 64)
		}
		fmt.Fprintf(&b, "%s%s\n", ui.RenderLabel(label), val)
	}
	row("Reach", out.Inputs.Reach)
	row("Impact", out.Inputs.Impact)
	row("Confidence", out.Inputs.Confidence)
	row("Effort", out.Inputs.Effort)
	b.WriteString(ui.RenderSeparator() + "\n")

	switch out.Score.Formula {
	case rice.FormulaFull:
		fmt.Fprintf(&b, "%s%s\n", ui.RenderLabel("Formula"), "reach × impact × confidence ÷ effort")
	case rice.FormulaPartial:
		fmt.Fprintf(&b, "%s%s\n", ui.RenderLabel("Formula"), "reach × impact")
	}
	if !out.Score.Defined() {
		fmt.Fprintf(&b, "%s%s", ui.RenderLabel("RICE"), ui.RenderWarn("needs reach and impact"))
	} else {
		fmt.Fprintf(&b, "%s%s\n", ui.RenderLabel("RICE"), strconv.FormatFloat(out.Score.Value, 'f', -1, 64))
		fmt.Fprintf(&b, "%s%s", ui.RenderLabel("Priority"), ui.RenderTier(out.Tier, tierName(s, out.Tier)))
	}
	fmt.Fprintln(w, scoreBox.Render(b.String()))
}

func init() {
	scoreCmd.Flags().Float64("reach", 0, "Reach (people affected)")
	scoreCmd.Flags().String("impact", "", "Impact option (e.g. high or impact-high)")
	scoreCmd.Flags().String("confidence", "", "Confidence option (e.g. 80 or confidence-80)")
	scoreCmd.Flags().String("size", "", "Size option (e.g. small or effort-small)")
	scoreCmd.Flags().BoolP("interactive", "i", false, "Prompt for the inputs")
	rootCmd.AddCommand(scoreCmd)
}
