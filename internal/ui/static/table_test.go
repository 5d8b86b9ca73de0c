package static

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestRenderTable_Empty(t *testing.T) {
	t.Parallel()

	if got := RenderTable([]string{"BRANCH"}, nil); got != "" {
		t.Errorf("RenderTable(no rows) = %q, want empty", got)
	}
}

func TestRenderTable_Aligned(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(RenderTable(
		[]string{"BRANCH", "STATUS"},
		[][]string{
			{"main", "^"},
			{"feature-long-name", "↑"},
		},
	))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	col := strings.Index(lines[0], "STATUS")
	if col < 0 {
		t.Fatalf("header missing STATUS: %q", lines[0])
	}
	for i, want := range []string{"^", "↑"} {
		line := []rune(lines[i+1])
		// Compare in runes: the status glyphs are multi-byte.
		pos := len([]rune(lines[0][:col]))
		if len(line) <= pos || string(line[pos]) != want {
			t.Errorf("row %d: %q not aligned under STATUS (header %q)", i, lines[i+1], lines[0])
		}
	}
}

func TestRenderTable_StyledCells(t *testing.T) {
	t.Parallel()

	styled := "\x1b[2mfeature\x1b[0m"
	out := RenderTable([]string{"BRANCH", "AGE"}, [][]string{{styled, "3h ago"}, {"main", "1d ago"}})
	plain := ansi.Strip(out)
	if !strings.Contains(plain, "feature  3h ago") {
		t.Errorf("styled cell padded by byte length instead of width:\n%s", plain)
	}
}

func TestTable_RightAligned(t *testing.T) {
	t.Parallel()

	out := ansi.Strip(Table{
		Headers: []string{"AGE"},
		Rows:    [][]string{{"1d"}, {"12d"}},
		Right:   []int{0},
	}.String())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{"AGE", " 1d", "12d"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out)
	}
	for i, w := range want {
		if got := strings.TrimRight(lines[i], " "); got != w {
			t.Errorf("line %d = %q, want %q", i, got, w)
		}
	}
}
