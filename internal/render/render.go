package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/raphi011/wts/internal/status"
)

// Format is the output format of "wts list".
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Renderer receives rows as they fill in. Start is called once with every
// row in its skeleton state, Update after each fact transition of row i,
// and Finish once after the last Update.
// Rows are passed by value and may be kept.
type Renderer interface {
	Start(rows []status.Row)
	Update(i int, row status.Row)
	Finish(s Summary) error
}

// Warning is one de-duplicated failure cause.
type Warning struct {
	Cause string
	Count int
}

// Summary describes how collection went.
type Summary struct {
	Rows     int
	TimedOut int
	// Canceled counts jobs that never ran because of an interrupt or the
	// collection deadline.
	Canceled int
	Warnings []Warning
	Elapsed  time.Duration
}

// Options configure a renderer.
type Options struct {
	Out io.Writer // primary output
	Err io.Writer // footer and warnings
	// Full adds the CI and branch diff columns.
	Full bool
	// Now is the reference time for commit ages. Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Select picks the renderer for format once per command. Tables redraw
// in place when progressive is set and print once otherwise; JSON is
// always batch.
func Select(format Format, progressive bool, opts Options) Renderer {
	switch {
	case format == FormatJSON:
		return NewJSON(opts)
	case progressive:
		return NewProgressive(opts)
	default:
		return NewTable(opts)
	}
}

// WriteFooter prints the timeout count and de-duplicated warnings.
// Nothing is written for a clean run.
func WriteFooter(w io.Writer, s Summary) {
	var notes []string
	if s.TimedOut > 0 {
		notes = append(notes, fmt.Sprintf("%d timed out", s.TimedOut))
	}
	if s.Canceled > 0 {
		notes = append(notes, fmt.Sprintf("%d skipped", s.Canceled))
	}
	if len(notes) > 0 {
		fmt.Fprintf(w, "%s %s\n", markTimedOut, strings.Join(notes, ", "))
	}
	for _, warn := range s.Warnings {
		if warn.Count > 1 {
			fmt.Fprintf(w, "warning: %s (×%d)\n", warn.Cause, warn.Count)
		} else {
			fmt.Fprintf(w, "warning: %s\n", warn.Cause)
		}
	}
}
