package debug

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestOutput(t *testing.T) {
	oldQuiet := quietMode
	defer func() { quietMode = oldQuiet }()

	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"writes when not quiet", false, "#12 initiative\n"},
		{"discards when quiet", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetQuiet(tt.quiet)
			if IsQuiet() != tt.quiet {
				t.Fatalf("IsQuiet() = %v, want %v", IsQuiet(), tt.quiet)
			}
			var buf bytes.Buffer
			fmt.Fprintf(Output(&buf), "#%d initiative\n", 12)
			if got := buf.String(); got != tt.want {
				t.Errorf("Output() wrote %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewLogger_DebugEnv(t *testing.T) {
	oldEnabled, oldVerbose := enabled, verboseMode
	defer func() { enabled, verboseMode = oldEnabled, oldVerbose }()
	enabled, verboseMode = true, false

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "text")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Debug("token matched", "token", "impact-high")
	if !strings.Contains(buf.String(), "impact-high") {
		t.Errorf("BOARDSYNC_DEBUG should force debug level, got %q", buf.String())
	}

	SetVerbose(true)
	enabled = false
	buf.Reset()
	logger, err = NewLogger(&buf, "error", "text")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Debug("verbose")
	if !strings.Contains(buf.String(), "verbose") {
		t.Errorf("--verbose should force debug level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{" WARN ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	oldEnabled, oldVerbose, oldQuiet := enabled, verboseMode, quietMode
	defer func() { enabled, verboseMode, quietMode = oldEnabled, oldVerbose, oldQuiet }()
	enabled, verboseMode, quietMode = false, false, false

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(&buf, "info", "json")
		if err != nil {
			t.Fatalf("NewLogger() error = %v", err)
		}
		logger.Info("field updated", "field", "rice")
		logger.Debug("hidden")

		var entry map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
			t.Fatalf("output is not a single JSON line: %q", buf.String())
		}
		if entry["msg"] != "field updated" || entry["field"] != "rice" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("verbose lowers level", func(t *testing.T) {
		verboseMode = true
		defer func() { verboseMode = false }()
		var buf bytes.Buffer
		logger, err := NewLogger(&buf, "error", "text")
		if err != nil {
			t.Fatalf("NewLogger() error = %v", err)
		}
		logger.Debug("plumbing")
		if !strings.Contains(buf.String(), "plumbing") {
			t.Errorf("debug line missing from %q", buf.String())
		}
	})

	t.Run("quiet raises level", func(t *testing.T) {
		quietMode = true
		defer func() { quietMode = false }()
		var buf bytes.Buffer
		logger, err := NewLogger(&buf, "info", "text")
		if err != nil {
			t.Fatalf("NewLogger() error = %v", err)
		}
		logger.Info("chatter")
		if buf.Len() != 0 {
			t.Errorf("quiet logger wrote %q", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := NewLogger(io.Discard, "info", "xml"); err == nil {
			t.Error("NewLogger() error = nil, want error")
		}
	})
}
