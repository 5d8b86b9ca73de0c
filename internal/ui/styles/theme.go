package styles

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/raphi011/wts/internal/config"
)

// Theme defines the color palette for wts output
type Theme struct {
	Primary color.Color // current worktree
	Accent  color.Color // previous branch
	Success color.Color // CI passed
	Error   color.Color // CI failed
	Muted   color.Color // dimmed rows, commit SHAs
	Normal  color.Color
	Info    color.Color
	Warning color.Color // CI pending
}

// themeFamily pairs the light and dark variant of a preset.
// A nil variant falls back to the other one.
type themeFamily struct {
	Light *Theme
	Dark  *Theme
}

// palette builds a Theme from colours in field order: primary, accent,
// success, error, muted, normal, info, warning.
func palette(c ...string) Theme {
	if len(c) != 8 {
		panic(fmt.Sprintf("styles: palette needs 8 colours, got %d", len(c)))
	}
	return Theme{
		Primary: lipgloss.Color(c[0]),
		Accent:  lipgloss.Color(c[1]),
		Success: lipgloss.Color(c[2]),
		Error:   lipgloss.Color(c[3]),
		Muted:   lipgloss.Color(c[4]),
		Normal:  lipgloss.Color(c[5]),
		Info:    lipgloss.Color(c[6]),
		Warning: lipgloss.Color(c[7]),
	}
}

// Presets.
var (
	DefaultTheme         = palette("62", "212", "82", "196", "240", "252", "244", "214")
	DraculaTheme         = palette("#bd93f9", "#ff79c6", "#50fa7b", "#ff5555", "#6272a4", "#f8f8f2", "#8be9fd", "#ffb86c")
	NordTheme            = palette("#88c0d0", "#b48ead", "#a3be8c", "#bf616a", "#4c566a", "#eceff4", "#81a1c1", "#ebcb8b")
	NordLightTheme       = palette("#5e81ac", "#b48ead", "#a3be8c", "#bf616a", "#9a9a9a", "#2e3440", "#81a1c1", "#d08770")
	GruvboxTheme         = palette("#83a598", "#d3869b", "#b8bb26", "#fb4934", "#665c54", "#ebdbb2", "#8ec07c", "#fabd2f")
	GruvboxLightTheme    = palette("#076678", "#8f3f71", "#79740e", "#9d0006", "#928374", "#3c3836", "#427b58", "#b57614")
	CatppuccinMochaTheme = palette("#89b4fa", "#f5c2e7", "#a6e3a1", "#f38ba8", "#6c7086", "#cdd6f4", "#94e2d5", "#fab387")
	CatppuccinLatteTheme = palette("#1e66f5", "#ea76cb", "#40a02b", "#d20f39", "#9ca0b0", "#4c4f69", "#179299", "#fe640b")

	// NoneTheme leaves colours to the terminal; bold and italic still apply.
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Normal:  lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
	}
)

// themeFamilies maps theme family names to their light/dark variants
var themeFamilies = map[string]themeFamily{
	"none":       {Light: &NoneTheme, Dark: &NoneTheme},
	"default":    {Dark: &DefaultTheme},
	"dracula":    {Dark: &DraculaTheme},
	"nord":       {Light: &NordLightTheme, Dark: &NordTheme},
	"gruvbox":    {Light: &GruvboxLightTheme, Dark: &GruvboxTheme},
	"catppuccin": {Light: &CatppuccinLatteTheme, Dark: &CatppuccinMochaTheme},
}

// currentTheme holds the active theme
var currentTheme = DefaultTheme

// Current returns the current theme
func Current() Theme {
	return currentTheme
}

// Init initializes the theme from config.
// Call this after loading config and before rendering any output.
func Init(cfg config.ThemeConfig) {
	theme := selectTheme(cfg)

	// Override individual colors if specified
	for _, o := range []struct {
		value string
		dst   *color.Color
	}{
		{cfg.Primary, &theme.Primary},
		{cfg.Accent, &theme.Accent},
		{cfg.Success, &theme.Success},
		{cfg.Error, &theme.Error},
		{cfg.Muted, &theme.Muted},
		{cfg.Normal, &theme.Normal},
		{cfg.Info, &theme.Info},
		{cfg.Warning, &theme.Warning},
	} {
		if o.value != "" {
			*o.dst = lipgloss.Color(o.value)
		}
	}

	currentTheme = theme
	applyTheme(theme)
}

// selectTheme picks the appropriate theme based on config and terminal background
func selectTheme(cfg config.ThemeConfig) Theme {
	mode := cfg.Mode
	if mode == "" {
		mode = "auto"
	}

	family, ok := themeFamilies[cfg.Name]
	if !ok {
		if cfg.Name != "" {
			fmt.Fprintf(os.Stderr, "Warning: unknown theme %q, using default (available: %s)\n",
				cfg.Name, strings.Join(config.ValidThemeNames, ", "))
		}
		family = themeFamilies["default"]
	}

	var theme *Theme
	switch mode {
	case "light":
		theme = family.Light
	case "dark":
		theme = family.Dark
	default:
		if mode != "auto" {
			fmt.Fprintf(os.Stderr, "Warning: unknown theme mode %q, using auto (available: %s)\n",
				mode, strings.Join(config.ValidThemeModes, ", "))
		}
		// Only query the terminal when the family has both variants.
		if family.Light != nil && family.Dark != nil && family.Light != family.Dark {
			if lipgloss.HasDarkBackground(os.Stdin, os.Stderr) {
				theme = family.Dark
			} else {
				theme = family.Light
			}
		}
	}

	// Fall back if the requested variant doesn't exist
	if theme == nil {
		switch {
		case family.Dark != nil:
			theme = family.Dark
		case family.Light != nil:
			theme = family.Light
		default:
			return DefaultTheme
		}
	}
	return *theme
}

// applyTheme updates all global style variables to use the given theme
func applyTheme(t Theme) {
	Primary = t.Primary
	Accent = t.Accent
	Success = t.Success
	Error = t.Error
	Muted = t.Muted
	Normal = t.Normal
	Info = t.Info
	Warning = t.Warning

	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	AccentStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	NormalStyle = lipgloss.NewStyle().Foreground(t.Normal)
	InfoStyle = lipgloss.NewStyle().Foreground(t.Info).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
}

// GetPreset returns a theme preset by name, or nil if not found.
// For families with both variants the dark one is returned.
func GetPreset(name string) *Theme {
	if family, ok := themeFamilies[name]; ok {
		if family.Dark != nil {
			return family.Dark
		}
		return family.Light
	}
	return nil
}

// PresetNames returns the available theme families.
func PresetNames() []string {
	return config.ValidThemeNames
}
