// Package debug holds the verbose/quiet switches and builds the structured
// logger the commands pass down to the engine.
package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	enabled     = os.Getenv("BOARDSYNC_DEBUG") != ""
	verboseMode = false
	quietMode   = false
)

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// Output returns w, or io.Discard in quiet mode. Informational command
// output goes through it; failures are written to w directly.
func Output(w io.Writer) io.Writer {
	if quietMode {
		return io.Discard
	}
	return w
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}

// NewLogger builds a logger writing to w in the given format ("text" or
// "json"). Debug mode lowers the level to debug; quiet mode raises it to
// warn.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch {
	case enabled || verboseMode:
		lvl = slog.LevelDebug
	case quietMode && lvl < slog.LevelWarn:
		lvl = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
}
