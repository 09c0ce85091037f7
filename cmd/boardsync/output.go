package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/steveyegge/boardsync/internal/board"
	"github.com/steveyegge/boardsync/internal/debug"
	"github.com/steveyegge/boardsync/internal/engine"
	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/types"
	"github.com/steveyegge/boardsync/internal/ui"
)

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// tierName returns the board's display name for a tier.
func tierName(s *schema.Schema, t types.Tier) string {
	if r, ok := s.TierRule(t); ok && r.Name != "" {
		return r.Name
	}
	return t.String()
}

// printResult writes a human-readable summary of one run. Nothing is
// written in quiet mode.
func printResult(w io.Writer, s *schema.Schema, res *engine.Result) {
	w = debug.Output(w)
	head := fmt.Sprintf("#%d %s", res.Issue, res.Kind)
	if res.Skipped {
		fmt.Fprintf(w, "%s %s %s\n", ui.Icon(ui.IconSkip), head, ui.RenderMuted("skipped: "+res.SkipReason))
		return
	}
	icon := ui.Icon(ui.IconPass)
	if res.Stats.Missing > 0 {
		icon = ui.Icon(ui.IconWarn)
	}
	fmt.Fprintf(w, "%s %s %s\n", icon, head, ui.RenderMuted("run "+shortID(res.RunID)))

	switch res.Kind {
	case engine.KindInitiative:
		if res.Score.Defined() {
			fmt.Fprintf(w, "%s%s%s (%s)\n", ui.TreeIndent, ui.RenderLabel("RICE"),
				strconv.FormatFloat(res.Score.Value, 'f', -1, 64), res.Score.Formula)
		} else {
			fmt.Fprintf(w, "%s%s%s\n", ui.TreeIndent, ui.RenderLabel("RICE"), ui.RenderMuted("not enough inputs"))
		}
		if res.Tier.IsValid() {
			fmt.Fprintf(w, "%s%s%s\n", ui.TreeIndent, ui.RenderLabel("Priority"), ui.RenderTier(res.Tier, tierName(s, res.Tier)))
		}
	case engine.KindChild:
		fmt.Fprintf(w, "%s%s#%d\n", ui.TreeIndent, ui.RenderLabel("Parent"), res.Parent)
	}

	for _, c := range res.Changes {
		state := ui.RenderMuted("unchanged")
		if c.Written {
			state = ui.RenderPass("written")
		}
		value := c.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "%s%s%s = %s  %s %s\n", ui.TreeIndent, ui.TreeLast, c.Field, value, state, ui.RenderMuted(c.Reason))
	}
	fmt.Fprintf(w, "%s%s\n", ui.TreeIndent, ui.RenderMuted(fmt.Sprintf("written %d, unchanged %d, missing %d",
		res.Stats.Written, res.Stats.Unchanged, res.Stats.Missing)))
}

// printBatch writes every run of a resync followed by the failures. Quiet
// mode keeps only the failures and the totals.
func printBatch(w io.Writer, s *schema.Schema, batch *engine.BatchResult) {
	for _, res := range batch.Results {
		printResult(w, s, res)
	}
	for _, f := range batch.Failures {
		fmt.Fprintf(w, "%s #%d %s\n", ui.Icon(ui.IconFail), f.Issue, ui.RenderFail(f.Error))
	}
	fmt.Fprintln(w, ui.RenderSeparator())
	fmt.Fprintf(w, "%d runs, %d failed, %d ignored, %d fields written\n",
		len(batch.Results), len(batch.Failures), batch.Ignored, batch.Written())
}

// printDryRun lists the writes a dry run held back.
func printDryRun(w io.Writer, d *board.DryRun) {
	if d == nil {
		return
	}
	w = debug.Output(w)
	writes := d.Writes()
	fmt.Fprintf(w, "%s\n", ui.RenderCategory(fmt.Sprintf("dry run: %d writes not sent", len(writes))))
	for _, wr := range writes {
		fmt.Fprintf(w, "%s%s%s\n", ui.TreeIndent, ui.TreeLast, wr)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
