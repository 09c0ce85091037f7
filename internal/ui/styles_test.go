package ui

import (
	"strings"
	"testing"

	"github.com/steveyegge/boardsync/internal/types"
)

func TestRenderTier(t *testing.T) {
	tests := []struct {
		tier types.Tier
		name string
		want string
	}{
		{types.TierVeryLow, "Very Low", "Very Low"},
		{types.TierHigh, "", "high"},
		{types.TierUrgent, "Urgent", "Urgent"},
		{types.TierNone, "", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := RenderTier(tt.tier, tt.name); !strings.Contains(got, tt.want) {
				t.Errorf("RenderTier(%v, %q) = %q, want it to contain %q", tt.tier, tt.name, got, tt.want)
			}
		})
	}
}

func TestIcon_PlainWhenDisabled(t *testing.T) {
	t.Setenv("BOARDSYNC_NO_ICONS", "1")
	tests := map[string]string{
		IconPass: "ok",
		IconWarn: "!",
		IconFail: "x",
		IconSkip: "-",
	}
	for icon, want := range tests {
		if got := Icon(icon); got != want {
			t.Errorf("Icon(%q) = %q, want %q", icon, got, want)
		}
	}
}

func TestRenderMarkdown_PlainWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	in := "# Board\n\n| field | id |\n|---|---|\n| rice | F1 |\n"
	if got := RenderMarkdown(in); got != in {
		t.Errorf("RenderMarkdown() = %q, want input unchanged", got)
	}
}

func TestRenderMarkdown_Styled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	got := RenderMarkdown("# Board\n\nsome **bold** text\n")
	if !strings.Contains(got, "Board") || !strings.Contains(got, "bold") {
		t.Errorf("RenderMarkdown() lost content: %q", got)
	}
}
