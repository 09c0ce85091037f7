package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/boardsync/internal/engine"
	"github.com/steveyegge/boardsync/internal/github"
	"github.com/steveyegge/boardsync/internal/webhook"
)

var eventCmd = &cobra.Command{
	Use:     "event",
	GroupID: "sync",
	Short:   "Handle the GitHub Actions event that triggered this workflow",
	Long: `Reads the event payload GitHub Actions writes to $GITHUB_EVENT_PATH and
handles it the way the webhook server would. Events other than issues
events, and actions that cannot change the board, exit successfully without
doing anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("event-path")
		if path == "" {
			path = os.Getenv("GITHUB_EVENT_PATH")
		}
		if path == "" {
			return fmt.Errorf("no event payload: set GITHUB_EVENT_PATH or --event-path")
		}
		name, _ := cmd.Flags().GetString("event-name")
		if name == "" {
			name = os.Getenv("GITHUB_EVENT_NAME")
		}

		target, skip, err := readEvent(path, name)
		if err != nil {
			return err
		}
		if skip != "" {
			logger.Info("nothing to do", "reason", skip)
			return nil
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		res, err := a.engine.Dispatch(rootCtx, target)
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
	},
}

// readEvent decodes an issues event payload. A non-empty skip reason means
// the event needs no run.
func readEvent(path, name string) (target engine.Target, skip string, err error) {
	if name != "" && name != "issues" {
		return target, "event " + name, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is set by the Actions runner
	if err != nil {
		return target, "", fmt.Errorf("failed to read event payload: %w", err)
	}
	var ev github.IssuesEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return target, "", fmt.Errorf("failed to parse event payload: %w", err)
	}
	if ev.Issue == nil {
		return target, "payload has no issue", nil
	}
	if !webhook.HandlesAction(ev.Action) {
		return target, "action " + ev.Action, nil
	}
	return engine.TargetFromIssue(*ev.Issue), "", nil
}

func init() {
	eventCmd.Flags().String("event-path", "", "Event payload file (default $GITHUB_EVENT_PATH)")
	eventCmd.Flags().String("event-name", "", "Event name (default $GITHUB_EVENT_NAME)")
	rootCmd.AddCommand(eventCmd)
}
