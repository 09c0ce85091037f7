package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/boardsync/internal/config"
	"github.com/steveyegge/boardsync/internal/debug"
	"github.com/steveyegge/boardsync/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "tools",
	Short:   "Show configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every configuration key with its effective value",
	Long: `Lists every key with the value boardsync would use, after flags, BOARDSYNC_*
environment variables, the config file and defaults. Secrets are masked.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		entries := config.Entries()
		if jsonOutput {
			out := make(map[string]string, len(entries))
			for _, e := range entries {
				out[e.Key] = e.Value
			}
			outputJSON(out)
			return
		}

		if f := config.ConfigFileUsed(); f != "" {
			fmt.Printf("%s %s\n\n", ui.RenderMuted("config file:"), f)
		}
		for _, e := range entries {
			val := e.Value
			if val == "" {
				val = ui.RenderMuted("(unset)")
			}
			desc := ""
			if k := config.LookupKey(e.Key); k != nil {
				desc = k.Description
			}
			fmt.Printf("%-28s %s\n", ui.RenderAccent(e.Key), val)
			if desc != "" && !debug.IsQuiet() {
				fmt.Printf("%s%s%s\n", ui.TreeIndent, ui.TreeLast, ui.RenderMuted(desc))
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
