package styles

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/raphi011/wts/internal/config"
)

// Theme tests mutate package globals and must not run in parallel.

func TestInit_DefaultTheme(t *testing.T) {
	Init(config.ThemeConfig{})

	theme := Current()
	if theme.Primary != lipgloss.Color("62") {
		t.Errorf("expected default primary color 62, got %v", theme.Primary)
	}
	if theme.Accent != lipgloss.Color("212") {
		t.Errorf("expected default accent color 212, got %v", theme.Accent)
	}
}

func TestInit_PresetTheme(t *testing.T) {
	tests := []struct {
		preset string
		mode   string
		want   string // primary color
	}{
		{"dracula", "dark", "#bd93f9"},
		{"nord", "dark", "#88c0d0"},
		{"nord", "light", "#5e81ac"},
		{"gruvbox", "dark", "#83a598"},
		{"gruvbox", "light", "#076678"},
		{"catppuccin", "dark", "#89b4fa"},
		{"catppuccin", "light", "#1e66f5"},
		// dark-only family falls back to its dark variant
		{"dracula", "light", "#bd93f9"},
	}

	for _, tt := range tests {
		t.Run(tt.preset+"/"+tt.mode, func(t *testing.T) {
			Init(config.ThemeConfig{Name: tt.preset, Mode: tt.mode})

			if got := Current().Primary; got != lipgloss.Color(tt.want) {
				t.Errorf("primary = %v, want %v", got, tt.want)
			}
		})
	}

	Init(config.ThemeConfig{})
}

func TestInit_PresetWithOverride(t *testing.T) {
	Init(config.ThemeConfig{
		Name:    "dracula",
		Mode:    "dark",
		Accent:  "#123456",
		Warning: "#abcdef",
	})

	theme := Current()
	if theme.Primary != lipgloss.Color("#bd93f9") {
		t.Errorf("expected dracula primary color, got %v", theme.Primary)
	}
	if theme.Accent != lipgloss.Color("#123456") {
		t.Errorf("expected custom accent color #123456, got %v", theme.Accent)
	}
	if theme.Warning != lipgloss.Color("#abcdef") {
		t.Errorf("expected custom warning color #abcdef, got %v", theme.Warning)
	}

	Init(config.ThemeConfig{})
}

func TestApplyTheme_UpdatesGlobalStyles(t *testing.T) {
	Init(config.ThemeConfig{Name: "dracula", Mode: "dark"})

	if Primary != lipgloss.Color("#bd93f9") {
		t.Errorf("expected Primary to be updated to dracula color, got %v", Primary)
	}
	if PrimaryStyle.GetForeground() != lipgloss.Color("#bd93f9") {
		t.Errorf("expected PrimaryStyle foreground to be updated, got %v", PrimaryStyle.GetForeground())
	}

	Init(config.ThemeConfig{})
}

func TestGetPreset(t *testing.T) {
	if GetPreset("dracula") == nil {
		t.Error("expected dracula preset to exist")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetNames_MatchFamilies(t *testing.T) {
	for _, name := range PresetNames() {
		if _, ok := themeFamilies[name]; !ok {
			t.Errorf("preset %q has no theme family", name)
		}
	}
	if len(PresetNames()) != len(themeFamilies) {
		t.Errorf("got %d preset names, %d families", len(PresetNames()), len(themeFamilies))
	}
}
