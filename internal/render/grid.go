package render

import (
	"time"

	"github.com/raphi011/wts/internal/status"
	"github.com/raphi011/wts/internal/ui/static"
	"github.com/raphi011/wts/internal/ui/styles"
)

// grid holds the drawn cells of every row. A cell freezes the first time
// it is computed from a settled fact and is never recomputed.
type grid struct {
	cols   []column
	now    time.Time
	rows   []status.Row
	cells  [][]cell
	frozen [][]bool
}

func newGrid(cols []column, rows []status.Row, now time.Time) *grid {
	g := &grid{
		cols:   cols,
		now:    now,
		rows:   make([]status.Row, len(rows)),
		cells:  make([][]cell, len(rows)),
		frozen: make([][]bool, len(rows)),
	}
	for i := range rows {
		g.cells[i] = make([]cell, len(cols))
		g.frozen[i] = make([]bool, len(cols))
		g.update(i, rows[i])
	}
	return g
}

// update records the latest state of row i and fills any cell whose fact
// has settled since. It reports whether a cell changed.
func (g *grid) update(i int, row status.Row) bool {
	if i < 0 || i >= len(g.rows) {
		return false
	}
	g.rows[i] = row
	changed := false
	for j, col := range g.cols {
		if g.frozen[i][j] {
			continue
		}
		c := col.value(&g.rows[i], g.now)
		if c.state.Terminal() {
			g.frozen[i][j] = true
		}
		if c != g.cells[i][j] {
			g.cells[i][j] = c
			changed = true
		}
	}
	return changed
}

// done reports whether every cell has settled.
func (g *grid) done() bool {
	for _, row := range g.frozen {
		for _, f := range row {
			if !f {
				return false
			}
		}
	}
	return true
}

// dimmed reports whether row i is settled and has no unique work.
func (g *grid) dimmed(i int) bool {
	r := &g.rows[i]
	return r.Pending() == 0 && status.Dimmed(r)
}

// strings renders the cell texts, showing pending for unsettled cells.
func (g *grid) strings(pending string) [][]string {
	out := make([][]string, len(g.rows))
	for i := range g.rows {
		dim := g.dimmed(i)
		line := make([]string, len(g.cols))
		for j := range g.cols {
			text := g.cells[i][j].text
			if !g.frozen[i][j] {
				text = pending
			}
			if dim && text != "" {
				text = styles.MutedStyle.Render(text)
			}
			line[j] = text
		}
		out[i] = line
	}
	return out
}

// table lays out the current cells, see strings.
func (g *grid) table(pending string) static.Table {
	return static.Table{
		Headers: headers(g.cols),
		Rows:    g.strings(pending),
		Right:   rightAligned(g.cols),
	}
}
