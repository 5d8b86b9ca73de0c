package styles

import (
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/raphi011/wts/internal/forge"
)

// CISymbol returns the glyph for a CI status. No CI renders as "".
func CISymbol(s forge.Status) string {
	switch s {
	case forge.StatusPassed, forge.StatusRunning, forge.StatusFailed:
		return "●"
	case forge.StatusConflicts:
		return "✗"
	case forge.StatusError:
		return "⚠"
	default:
		return ""
	}
}

func ciStyle(ci forge.CIStatus) lipgloss.Style {
	if ci.Stale {
		return MutedStyle
	}
	switch ci.Status {
	case forge.StatusPassed:
		return SuccessStyle
	case forge.StatusRunning, forge.StatusError:
		return WarningStyle
	case forge.StatusFailed, forge.StatusConflicts:
		return ErrorStyle
	default:
		return NormalStyle
	}
}

// FormatCI returns the coloured CI glyph, wrapped in an OSC 8 hyperlink to
// the pull request or pipeline when a URL is known. Stale results are muted.
func FormatCI(ci forge.CIStatus) string {
	sym := CISymbol(ci.Status)
	if sym == "" {
		return ""
	}
	styled := ciStyle(ci).Render(sym)
	if ci.URL != "" {
		return Hyperlink(ci.URL, styled)
	}
	return styled
}

// Hyperlink wraps text in an OSC 8 hyperlink to url.
func Hyperlink(url, text string) string {
	return ansi.SetHyperlink(url) + text + ansi.ResetHyperlink()
}
