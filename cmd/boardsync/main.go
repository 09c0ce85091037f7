package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/boardsync/internal/config"
	"github.com/steveyegge/boardsync/internal/debug"
	"github.com/steveyegge/boardsync/internal/telemetry"
)

var (
	configPath  string
	jsonOutput  bool
	verboseFlag bool // Enable verbose/debug output
	quietFlag   bool // Suppress non-essential output

	// Effective settings, loaded in PersistentPreRunE
	settings *config.Settings
	logger   *slog.Logger

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// flagKeys maps persistent flags onto config keys so a set flag beats env
// and the config file.
var flagKeys = map[string]string{
	"dry-run":    "dry-run",
	"schema":     "schema",
	"log-level":  "log.level",
	"log-format": "log.format",
	"strip-body": "strip-body",
}

var rootCmd = &cobra.Command{
	Use:   "boardsync",
	Short: "boardsync - RICE scoring and field sync for a GitHub project board",
	Long: `Keeps a GitHub Projects (v2) board in step with its issues.

Initiative issues have their NSM, Squad, OKR and RICE inputs read from the
issue text, their RICE score computed and their priority tier set. Sub-issues
adopt their parent's fields and get a workflow phase from their labels or
title.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupSignalContext()
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)

		if err := config.InitializeWithFile(configPath); err != nil {
			return err
		}
		for name, key := range flagKeys {
			if err := config.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}

		s, err := config.Load()
		if err != nil {
			return err
		}
		settings = s

		logger, err = debug.NewLogger(os.Stderr, s.LogLevel, s.LogFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		if f := config.ConfigFileUsed(); f != "" {
			logger.Debug("loaded config file", "path", f)
		}

		if err := telemetry.Init(rootCtx, "boardsync", Version); err != nil {
			logger.Warn("telemetry disabled", "error", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./boardsync.yaml or ~/.config/boardsync/boardsync.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Log board writes instead of sending them")
	rootCmd.PersistentFlags().String("schema", "", "Board schema file (.yaml or .toml; default: built-in board)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().Bool("strip-body", true, "Remove form sections from initiative bodies after syncing")

	rootCmd.AddGroup(&cobra.Group{ID: "sync", Title: "Board Automation:"})
	rootCmd.AddGroup(&cobra.Group{ID: "tools", Title: "Tools & Configuration:"})
}

// setupSignalContext cancels rootCtx on SIGINT/SIGTERM.
func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// shutdown flushes telemetry and releases the signal context. It runs
// whether or not the command succeeded.
func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	telemetry.Shutdown(ctx)
	if rootCancel != nil {
		rootCancel()
	}
}

func main() {
	err := rootCmd.Execute()
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}
