// Package styles provides shared lipgloss styles for wts output.
//
// Colours come from the active [Theme]; call [Init] once after loading
// config and before rendering anything.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette of the active theme.
var (
	// Primary is the main accent color (current worktree)
	Primary color.Color = DefaultTheme.Primary

	// Accent is the highlight color (previous worktree)
	Accent color.Color = DefaultTheme.Accent

	// Success is used for passing CI and ahead counts
	Success color.Color = DefaultTheme.Success

	// Error is used for failing CI, conflicts and behind counts
	Error color.Color = DefaultTheme.Error

	// Muted is used for dimmed rows and secondary columns
	Muted color.Color = DefaultTheme.Muted

	// Normal is the standard text color
	Normal color.Color = DefaultTheme.Normal

	// Info is used for informational text
	Info color.Color = DefaultTheme.Info

	// Warning is used for running CI, timeouts and warnings
	Warning color.Color = DefaultTheme.Warning
)

// Common styles
var (
	Bold = lipgloss.NewStyle().Bold(true)

	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)
	AccentStyle  = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	NormalStyle  = lipgloss.NewStyle().Foreground(Normal)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
)
