// Package static renders non-interactive terminal output such as the
// batch status table.
package static

import (
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

const defaultGap = 2

// Table is a borderless table with a bold header row. Cells may already
// carry ANSI styling; lipgloss measures their printable width.
type Table struct {
	Headers []string
	Rows    [][]string
	// Right holds the indexes of right-aligned columns.
	Right []int
	// Gap is the blank space after every column. Zero means two cells.
	Gap int
}

// String renders the table followed by a newline, or "" without rows.
func (t Table) String() string {
	if len(t.Rows) == 0 {
		return ""
	}
	gap := t.Gap
	if gap <= 0 {
		gap = defaultGap
	}

	lt := table.New().
		Headers(t.Headers...).
		Rows(t.Rows...).
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingRight(gap)
			if slices.Contains(t.Right, col) {
				s = s.Align(lipgloss.Right)
			}
			if row == table.HeaderRow {
				s = s.Bold(true)
			}
			return s
		})

	var b strings.Builder
	b.WriteString(lt.String())
	b.WriteByte('\n')
	return b.String()
}

// RenderTable renders headers and rows with default spacing.
func RenderTable(headers []string, rows [][]string) string {
	return Table{Headers: headers, Rows: rows}.String()
}
