package render

import (
	"fmt"
	"io"
	"os"
	"sync"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/raphi011/wts/internal/status"
)

type rowMsg struct {
	i   int
	row status.Row
}

type finishMsg struct{}

// progressModel is the bubbletea model behind Progressive.
type progressModel struct {
	grid     *grid
	spinner  spinner.Model
	finished bool
}

func newProgressModel(g *grid) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return progressModel{grid: g, spinner: sp}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rowMsg:
		m.grid.update(msg.i, msg.row)
		return m, nil
	case finishMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() tea.View {
	return tea.NewView(m.render())
}

func (m progressModel) render() string {
	pending := ""
	if !m.finished {
		pending = m.spinner.View()
	}
	return m.grid.table(pending).String()
}

// Progressive draws the skeleton immediately and fills cells in place as
// facts settle. The program never reads input; interrupts reach the
// command's own signal handling.
type Progressive struct {
	opts Options

	mu      sync.Mutex
	grid    *grid
	program *tea.Program
	done    chan struct{}
	runErr  error
}

// NewProgressive creates a progressive renderer writing to opts.Out.
func NewProgressive(opts Options) *Progressive {
	return &Progressive{opts: opts}
}

func (p *Progressive) Start(rows []status.Row) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.grid = newGrid(columnsFor(p.opts.Full), rows, p.opts.now())
	if len(rows) == 0 {
		return
	}

	profile := colorprofile.Detect(p.opts.Out, os.Environ())
	p.program = tea.NewProgram(newProgressModel(p.grid),
		tea.WithInput(nil),
		tea.WithOutput(p.opts.Out),
		tea.WithoutSignalHandler(),
		tea.WithColorProfile(profile),
	)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		if _, err := p.program.Run(); err != nil {
			p.mu.Lock()
			p.runErr = err
			p.mu.Unlock()
		}
	}()
}

func (p *Progressive) running() bool {
	if p.program == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Progressive) Update(i int, row status.Row) {
	if p.running() {
		p.program.Send(rowMsg{i: i, row: row})
		return
	}
	// The program is gone; keep the grid current for the fallback table.
	p.mu.Lock()
	if p.grid != nil {
		p.grid.update(i, row)
	}
	p.mu.Unlock()
}

func (p *Progressive) Finish(s Summary) error {
	if p.program != nil {
		if p.running() {
			p.program.Send(finishMsg{})
		}
		<-p.done
	}

	p.mu.Lock()
	runErr := p.runErr
	p.mu.Unlock()
	if runErr != nil && p.grid != nil {
		// The terminal could not be driven; print what we have instead.
		w := colorprofile.NewWriter(p.opts.Out, os.Environ())
		out := p.grid.table("").String()
		if _, err := io.WriteString(w, out); err != nil {
			return fmt.Errorf("write table: %w", err)
		}
	}
	WriteFooter(p.opts.Err, s)
	return nil
}
