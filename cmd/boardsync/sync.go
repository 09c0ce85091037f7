package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/boardsync/internal/engine"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Run the board automation for one issue",
}

var syncInitiativeCmd = &cobra.Command{
	Use:   "initiative <issue>",
	Short: "Score an initiative and sync its fields from the issue text",
	Long: `Reads NSM, Squad, OKR, Reach, Impact, Confidence and Size from the issue's
body and labels, writes the ones that changed, recomputes the RICE score and
priority tier, and strips the form sections from the body.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(args[0], func(a *app, n int) (*engine.Result, error) {
			return a.engine.SyncInitiative(rootCtx, n)
		})
	},
}

var syncChildCmd = &cobra.Command{
	Use:     "child <issue>",
	Aliases: []string{"children"},
	Short:   "Copy fields from a sub-issue's parent and set its workflow phase",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(args[0], func(a *app, n int) (*engine.Result, error) {
			return a.engine.CopyFromParent(rootCtx, n)
		})
	},
}

var syncIssueCmd = &cobra.Command{
	Use:   "issue <issue>",
	Short: "Fetch an issue and run whichever automation applies to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(args[0], func(a *app, n int) (*engine.Result, error) {
			issue, err := a.client.FetchIssueByNumber(rootCtx, n)
			if err != nil {
				return nil, err
			}
			return a.engine.Dispatch(rootCtx, engine.TargetFromIssue(*issue))
		})
	},
}

func runSync(arg string, run func(*app, int) (*engine.Result, error)) error {
	n, err := parseIssueNumber(arg)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	res, err := run(a, n)
	if err != nil {
		return err
	}
	if jsonOutput {
		outputJSON(res)
		return nil
	}
	printResult(os.Stdout, a.schema.Get(), res)
	printDryRun(os.Stdout, a.dryRun)
	return nil
}

func init() {
	syncCmd.AddCommand(syncInitiativeCmd, syncChildCmd, syncIssueCmd)
	rootCmd.AddCommand(syncCmd)
}
