package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/boardsync/internal/debug"
	"github.com/steveyegge/boardsync/internal/schema"
	"github.com/steveyegge/boardsync/internal/types"
	"github.com/steveyegge/boardsync/internal/ui"
)

var schemaCmd = &cobra.Command{
	Use:     "schema",
	GroupID: "tools",
	Short:   "Inspect and check board schemas",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active board schema",
	Long: `Prints the active schema (the --schema file, or the built-in board).
--format markdown renders tables for the terminal; yaml and toml print a
file that --schema accepts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, err := loadSchema()
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "markdown", "md":
			fmt.Print(ui.RenderMarkdown(schemaMarkdown(holder.Get())))
			return nil
		case "yaml":
			return schema.Encode(os.Stdout, holder.Get(), schema.FormatYAML)
		case "toml":
			return schema.Encode(os.Stdout, holder.Get(), schema.FormatTOML)
		}
		return fmt.Errorf("unknown format %q (want markdown, yaml or toml)", format)
	},
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check schema files for errors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if _, err := schema.Load(path); err != nil {
				failed++
				fmt.Printf("%s %s\n%s%s%s\n", ui.Icon(ui.IconFail), path, ui.TreeIndent, ui.TreeLast, err)
				continue
			}
			fmt.Fprintf(debug.Output(os.Stdout), "%s %s\n", ui.Icon(ui.IconPass), path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d schema files are invalid", failed, len(args))
		}
		return nil
	},
}

// schemaMarkdown describes a schema as markdown tables.
func schemaMarkdown(s *schema.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Board schema\n\nProject `%s` (#%d)\n\n", s.ProjectID, s.ProjectNumber)

	b.WriteString("## Fields\n\n| Field | Name | ID |\n|---|---|---|\n")
	for _, f := range types.AllFields {
		def, ok := s.Fields[f]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | `%s` |\n", f, def.Name, def.ID)
	}

	vocab := func(title string, v schema.Vocabulary, numeric bool) {
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		if numeric {
			b.WriteString("| Token | Option | Value |\n|---|---|---|\n")
		} else {
			b.WriteString("| Token | Option |\n|---|---|\n")
		}
		for _, o := range v {
			if numeric {
				fmt.Fprintf(&b, "| `%s` | %s | %s |\n", o.Token, o.Name, strconv.FormatFloat(o.Value, 'f', -1, 64))
			} else {
				fmt.Fprintf(&b, "| `%s` | %s |\n", o.Token, o.Name)
			}
		}
	}
	vocab("Impact", s.Impact, true)
	vocab("Confidence", s.Confidence, true)
	vocab("Size", s.Size, true)
	vocab("Squad", s.Squad, false)
	vocab("NSM", s.NSM, false)
	vocab("OKR", s.OKR, false)

	b.WriteString("\n## Priority\n\n| Tier | Option | From score |\n|---|---|---|\n")
	for _, r := range s.Priority {
		from := strconv.FormatFloat(r.Min, 'f', -1, 64)
		if r.Manual {
			from = "manual"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.Tier, r.Name, from)
	}

	b.WriteString("\n## Workflow phases\n\n| Phase | Option | Labels | Title prefixes |\n|---|---|---|---|\n")
	for _, p := range s.Phases {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.Phase, p.Name, strings.Join(p.Labels, ", "), strings.Join(p.TitlePrefixes, ", "))
	}

	copyFields := make([]string, len(s.CopyFields))
	for i, f := range s.CopyFields {
		copyFields[i] = string(f)
	}
	fmt.Fprintf(&b, "\n## Rules\n\n- Reach is read from the line after **%s**\n", s.ReachLabel)
	fmt.Fprintf(&b, "- Sub-issues copy: %s\n", strings.Join(copyFields, ", "))
	fmt.Fprintf(&b, "- Initiatives: labels %s, types %s\n",
		strings.Join(s.InitiativeLabels, ", "), strings.Join(s.InitiativeTypes, ", "))
	return b.String()
}

func init() {
	schemaShowCmd.Flags().String("format", "markdown", "Output format (markdown, yaml, toml)")
	schemaCmd.AddCommand(schemaShowCmd, schemaValidateCmd)
	rootCmd.AddCommand(schemaCmd)
}
