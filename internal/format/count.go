package format

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/raphi011/wts/internal/git"
)

// Diff renders added/deleted line counts, omitting zero sides.
func Diff(d git.LineDiff) string {
	var parts []string
	if d.Added > 0 {
		parts = append(parts, "+"+strconv.Itoa(d.Added))
	}
	if d.Deleted > 0 {
		parts = append(parts, "-"+strconv.Itoa(d.Deleted))
	}
	return strings.Join(parts, " ")
}

// Divergence renders ahead/behind counts against the target, omitting
// zero sides.
func Divergence(ahead, behind int) string {
	return arrows("↑", "↓", ahead, behind)
}

// Tracking renders ahead/behind counts against the upstream.
func Tracking(ahead, behind int) string {
	return arrows("⇡", "⇣", ahead, behind)
}

func arrows(up, down string, ahead, behind int) string {
	var parts []string
	if ahead > 0 {
		parts = append(parts, up+strconv.Itoa(ahead))
	}
	if behind > 0 {
		parts = append(parts, down+strconv.Itoa(behind))
	}
	return strings.Join(parts, " ")
}

// Truncate shortens s to at most width cells, marking the cut with "…".
// A width <= 0 leaves s unchanged.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
