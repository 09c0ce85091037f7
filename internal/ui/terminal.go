package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

func init() {
	if !ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else if os.Getenv("CLICOLOR_FORCE") != "" && !IsTerminal() {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor follows the NO_COLOR and CLICOLOR conventions, then falls
// back to whether stdout is a terminal.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal()
}

// ShouldUseIcons reports whether status icons are printed.
// BOARDSYNC_NO_ICONS turns them off.
func ShouldUseIcons() bool {
	if os.Getenv("BOARDSYNC_NO_ICONS") != "" {
		return false
	}
	return IsTerminal()
}

// TerminalWidth returns the width of stdout, or fallback when unknown.
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// HasDarkBackground reports whether the terminal background is dark.
// Non-terminals are treated as dark.
func HasDarkBackground() bool {
	if !IsTerminal() {
		return true
	}
	return termenv.HasDarkBackground()
}
