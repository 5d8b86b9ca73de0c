package render

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphi011/wts/internal/facts"
	"github.com/raphi011/wts/internal/format"
	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/status"
	"github.com/raphi011/wts/internal/ui/styles"
)

const (
	markTimedOut = "⧖"
	messageWidth = 50
)

// cell is one table cell. While state is Pending the text is not shown.
type cell struct {
	text  string
	state facts.State
}

func settled(text string) cell {
	return cell{text: text, state: facts.Available}
}

// fromFact maps a fact to a cell, formatting its value when available.
func fromFact[T any](f facts.Fact[T], show func(T) string) cell {
	switch f.State {
	case facts.Available:
		return cell{text: show(f.Value), state: facts.Available}
	case facts.TimedOut:
		return cell{text: markTimedOut, state: facts.TimedOut}
	default:
		// Failed and absent facts render blank.
		return cell{state: f.State}
	}
}

// column is one table column.
type column struct {
	header string
	full   bool // only with --full
	right  bool
	value  func(r *status.Row, now time.Time) cell
}

var columns = []column{
	{header: "BRANCH", value: branchCell},
	{header: "STATUS", value: statusCell},
	{header: "HEAD±", value: workingDiffCell},
	{header: "MAIN↕", value: divergenceCell},
	{header: "MAIN…±", full: true, value: branchDiffCell},
	{header: "REMOTE⇅", value: remoteCell},
	{header: "CI", full: true, value: ciCell},
	{header: "PATH", value: pathCell},
	{header: "COMMIT", value: commitCell},
	{header: "AGE", right: true, value: ageCell},
	{header: "MESSAGE", value: messageCell},
}

// columnsFor returns the visible columns.
func columnsFor(full bool) []column {
	var cols []column
	for _, c := range columns {
		if c.full && !full {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

func headers(cols []column) []string {
	h := make([]string, len(cols))
	for i, c := range cols {
		h[i] = c.header
	}
	return h
}

func rightAligned(cols []column) []int {
	var idx []int
	for i, c := range cols {
		if c.right {
			idx = append(idx, i)
		}
	}
	return idx
}

func branchCell(r *status.Row, _ time.Time) cell {
	name := r.Branch
	if name == "" {
		name = "(detached)"
	}
	switch {
	case r.IsCurrent:
		name = styles.PrimaryStyle.Bold(true).Render("@ " + name)
	case r.IsPrevious:
		name = styles.AccentStyle.Render("- " + name)
	default:
		name = "  " + name
	}
	return settled(name)
}

// statusCell waits for every fact that feeds a symbol so the composed
// string is drawn once.
func statusCell(r *status.Row, _ time.Time) cell {
	for _, s := range []facts.State{r.WorkingTree.State, r.Operation.State, r.Integration.State, r.Remote.State} {
		if s == facts.Pending {
			return cell{state: facts.Pending}
		}
	}
	return settled(status.Compose(r).Symbols)
}

func workingDiffCell(r *status.Row, _ time.Time) cell {
	return fromFact(r.WorkingTree, func(wt git.WorkingTree) string {
		return format.Diff(wt.Diff)
	})
}

func divergenceCell(r *status.Row, _ time.Time) cell {
	return fromFact(r.Divergence, func(d git.Divergence) string {
		return format.Divergence(d.Ahead, d.Behind)
	})
}

func branchDiffCell(r *status.Row, _ time.Time) cell {
	return fromFact(r.BranchDiff, func(d git.LineDiff) string {
		return format.Diff(d)
	})
}

func remoteCell(r *status.Row, _ time.Time) cell {
	return fromFact(r.Remote, func(rm status.Remote) string {
		if rm.Ahead == 0 && rm.Behind == 0 {
			return status.SymbolRemoteInSync
		}
		return format.Tracking(rm.Ahead, rm.Behind)
	})
}

func ciCell(r *status.Row, _ time.Time) cell {
	return fromFact(r.CI, styles.FormatCI)
}

func pathCell(r *status.Row, _ time.Time) cell {
	return settled(shortenHome(r.Path))
}

func commitCell(r *status.Row, _ time.Time) cell {
	return settled(styles.MutedStyle.Render(r.Commit.ShortSHA()))
}

func ageCell(r *status.Row, now time.Time) cell {
	return settled(format.RelativeTimeFrom(r.Commit.Time, now))
}

func messageCell(r *status.Row, _ time.Time) cell {
	return settled(format.Truncate(r.Commit.Message, messageWidth))
}

func shortenHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" || path == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return filepath.Join("~", rel)
	}
	return path
}
