package render

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/raphi011/wts/internal/status"
)

// Table buffers rows and prints one table on Finish.
type Table struct {
	opts Options
	grid *grid
}

// NewTable creates a batch table renderer.
func NewTable(opts Options) *Table {
	return &Table{opts: opts}
}

func (t *Table) Start(rows []status.Row) {
	t.grid = newGrid(columnsFor(t.opts.Full), rows, t.opts.now())
}

func (t *Table) Update(i int, row status.Row) {
	if t.grid != nil {
		t.grid.update(i, row)
	}
}

func (t *Table) Finish(s Summary) error {
	if t.grid != nil && len(t.grid.rows) > 0 {
		// Downsample or strip colours for whatever the output really is.
		w := colorprofile.NewWriter(t.opts.Out, os.Environ())
		out := t.grid.table("").String()
		if _, err := io.WriteString(w, out); err != nil {
			return fmt.Errorf("write table: %w", err)
		}
	}
	WriteFooter(t.opts.Err, s)
	return nil
}
