package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/boardsync/internal/timeparsing"
)

var resyncCmd = &cobra.Command{
	Use:     "resync",
	GroupID: "sync",
	Short:   "Run the automation for every issue updated since a time",
	Long: `Lists the repository's issues updated since --since and runs the initiative
or sub-issue automation for each, a few at a time. Issues that are neither
are skipped. Exits non-zero when any run failed.

--since accepts compact durations (24h, 7d, 2w), dates (2025-01-31),
RFC3339 timestamps and English such as "yesterday" or "last monday".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		expr, _ := cmd.Flags().GetString("since")
		if expr == "" {
			expr = settings.ResyncSince
		}
		since, err := timeparsing.ParseSince(expr, time.Now())
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
			settings.ResyncConcurrency = n
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		logger.Info("resyncing issues", "since", since.Format(time.RFC3339))
		batch, err := a.engine.Resync(rootCtx, a.client, since)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(batch)
		} else {
			printBatch(os.Stdout, a.schema.Get(), batch)
			printDryRun(os.Stdout, a.dryRun)
		}
		if len(batch.Failures) > 0 {
			return fmt.Errorf("%d of %d runs failed", len(batch.Failures), len(batch.Failures)+len(batch.Results))
		}
		return nil
	},
}

func init() {
	resyncCmd.Flags().String("since", "", "Only issues updated since this time (default from resync.since)")
	resyncCmd.Flags().Int("concurrency", 0, "Issues processed at once (default from resync.concurrency)")
	rootCmd.AddCommand(resyncCmd)
}
