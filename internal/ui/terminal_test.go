package ui

import (
	"os"
	"testing"
)

func TestShouldUseColor(t *testing.T) {
	// Save original env vars
	origNoColor := os.Getenv("NO_COLOR")
	origCliColor := os.Getenv("CLICOLOR")
	origCliColorForce := os.Getenv("CLICOLOR_FORCE")
	defer func() {
		setEnv("NO_COLOR", origNoColor)
		setEnv("CLICOLOR", origCliColor)
		setEnv("CLICOLOR_FORCE", origCliColorForce)
	}()

	tests := []struct {
		name            string
		noColor         string
		cliColor        string
		cliColorForce   string
		wantColor       bool
		skipTTYDepCheck bool // Some tests don't depend on TTY state
	}{
		{
			name:            "NO_COLOR disables color",
			noColor:         "1",
			wantColor:       false,
			skipTTYDepCheck: true,
		},
		{
			name:            "NO_COLOR empty string value still disables",
			noColor:         "", // will be unset
			cliColor:        "",
			cliColorForce:   "",
			wantColor:       false, // depends on TTY, but we're in test = no TTY
			skipTTYDepCheck: false,
		},
		{
			name:            "CLICOLOR=0 disables color",
			cliColor:        "0",
			wantColor:       false,
			skipTTYDepCheck: true,
		},
		{
			name:            "CLICOLOR_FORCE enables color even in non-TTY",
			cliColorForce:   "1",
			wantColor:       true,
			skipTTYDepCheck: true,
		},
		{
			name:            "NO_COLOR takes precedence over CLICOLOR_FORCE",
			noColor:         "1",
			cliColorForce:   "1",
			wantColor:       false,
			skipTTYDepCheck: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear all vars first
			os.Unsetenv("NO_COLOR")
			os.Unsetenv("CLICOLOR")
			os.Unsetenv("CLICOLOR_FORCE")

			// Set test-specific vars
			if tt.noColor != "" {
				os.Setenv("NO_COLOR", tt.noColor)
			}
			if tt.cliColor != "" {
				os.Setenv("CLICOLOR", tt.cliColor)
			}
			if tt.cliColorForce != "" {
				os.Setenv("CLICOLOR_FORCE", tt.cliColorForce)
			}

			got := ShouldUseColor()
			if tt.skipTTYDepCheck && got != tt.wantColor {
				t.Errorf("ShouldUseColor() = %v, want %v", got, tt.wantColor)
			}
		})
	}
}

func TestShouldUseIcons(t *testing.T) {
	origNoIcons := os.Getenv("BOARDSYNC_NO_ICONS")
	defer setEnv("BOARDSYNC_NO_ICONS", origNoIcons)

	tests := []struct {
		name      string
		noIcons   string
		wantIcons bool
	}{
		{
			name:      "BOARDSYNC_NO_ICONS disables icons",
			noIcons:   "1",
			wantIcons: false,
		},
		{
			name:      "unset falls back to TTY check",
			noIcons:   "",
			wantIcons: false, // In test, stdout is not a TTY
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("BOARDSYNC_NO_ICONS")
			if tt.noIcons != "" {
				os.Setenv("BOARDSYNC_NO_ICONS", tt.noIcons)
			}

			got := ShouldUseIcons()
			if got != tt.wantIcons {
				t.Errorf("ShouldUseIcons() = %v, want %v", got, tt.wantIcons)
			}
		})
	}
}

func TestTerminalWidth_Fallback(t *testing.T) {
	if IsTerminal() {
		t.Skip("stdout is a terminal")
	}
	if got := TerminalWidth(72); got != 72 {
		t.Errorf("TerminalWidth(72) = %d, want 72", got)
	}
}

func TestIsTerminal(t *testing.T) {
	// When running under go test, stdout is typically not a TTY
	got := IsTerminal()
	// We can't easily assert the value, but we can verify it doesn't panic
	t.Logf("IsTerminal() = %v (expected false in test environment)", got)
}

// setEnv sets or unsets an environment variable
func setEnv(key, value string) {
	if value == "" {
		os.Unsetenv(key)
	} else {
		os.Setenv(key, value)
	}
}
