// Package ui provides terminal styling for boardsync CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/boardsync/internal/types"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
	ColorUrgent = lipgloss.AdaptiveColor{
		Light: "#a37acc", // ayu light purple
		Dark:  "#d2a6ff", // ayu dark purple
	}
)

// Status styles
var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// CategoryStyle for section headers - bold with accent color
var CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// LabelStyle pads field names so values line up.
var LabelStyle = lipgloss.NewStyle().Width(12).Foreground(ColorMuted)

// Status icons
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconSkip = "-"
	IconInfo = "ℹ"
)

// Tree characters for nested detail lines
const (
	TreeLast   = "└─ "
	TreeIndent = "  "
)

// SeparatorLight is a horizontal rule.
const SeparatorLight = "──────────────────────────────────────────"

var tierStyles = map[types.Tier]lipgloss.Style{
	types.TierVeryLow:  MutedStyle,
	types.TierLow:      lipgloss.NewStyle().Foreground(ColorAccent),
	types.TierMedium:   PassStyle,
	types.TierHigh:     WarnStyle,
	types.TierVeryHigh: FailStyle.Bold(true),
	types.TierUrgent:   lipgloss.NewStyle().Foreground(ColorUrgent).Bold(true),
}

// RenderTier renders a tier name in its tier color. Tiers without a rule
// render muted.
func RenderTier(t types.Tier, name string) string {
	if name == "" {
		name = t.String()
	}
	style, ok := tierStyles[t]
	if !ok {
		style = MutedStyle
	}
	return style.Render(name)
}

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string {
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderCategory renders a category header in uppercase with accent color
func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}

// RenderLabel renders a fixed-width field label.
func RenderLabel(s string) string {
	return LabelStyle.Render(s)
}

// RenderSeparator renders the light separator line in muted color
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}

// Icon returns a styled status icon, or a plain one when icons are off.
func Icon(icon string) string {
	if !ShouldUseIcons() {
		switch icon {
		case IconPass:
			return "ok"
		case IconWarn:
			return "!"
		case IconFail:
			return "x"
		}
		return icon
	}
	switch icon {
	case IconPass:
		return PassStyle.Render(icon)
	case IconWarn:
		return WarnStyle.Render(icon)
	case IconFail:
		return FailStyle.Render(icon)
	case IconInfo:
		return AccentStyle.Render(icon)
	}
	return MutedStyle.Render(icon)
}
