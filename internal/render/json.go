package render

import (
	"encoding/json"
	"fmt"

	"github.com/raphi011/wts/internal/forge"
	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/status"
)

type commitRecord struct {
	SHA       string `json:"sha"`
	ShortSHA  string `json:"short_sha"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type workingTreeRecord struct {
	Staged    bool         `json:"staged"`
	Modified  bool         `json:"modified"`
	Untracked bool         `json:"untracked"`
	Renamed   bool         `json:"renamed"`
	Deleted   bool         `json:"deleted"`
	Diff      git.LineDiff `json:"diff"`
}

type mainRecord struct {
	Ahead  int           `json:"ahead"`
	Behind int           `json:"behind"`
	Diff   *git.LineDiff `json:"diff,omitempty"`
}

// worktreeRecord describes the worktree itself. It is omitted when nothing
// about it is unusual.
type worktreeRecord struct {
	State    string `json:"state,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Detached bool   `json:"detached,omitempty"`
	Bare     bool   `json:"bare,omitempty"`
}

func newWorktreeRecord(r *status.Row) *worktreeRecord {
	if r.Kind != status.KindWorktree {
		return nil
	}
	var w worktreeRecord
	switch {
	case r.Locked:
		w.State, w.Reason = "locked", r.LockReason
	case r.Prunable:
		w.State, w.Reason = "prunable", r.PruneReason
	}
	w.Detached = r.Detached
	w.Bare = r.Bare
	if w == (worktreeRecord{}) {
		return nil
	}
	return &w
}

// record is the structured form of one row. Facts that are not available
// are omitted rather than reported as zero values.
type record struct {
	Branch            *string            `json:"branch"`
	Path              string             `json:"path,omitempty"`
	Kind              status.Kind        `json:"kind"`
	Commit            commitRecord       `json:"commit"`
	Worktree          *worktreeRecord    `json:"worktree,omitempty"`
	WorkingTree       *workingTreeRecord `json:"working_tree,omitempty"`
	MainState         string             `json:"main_state,omitempty"`
	IntegrationReason string             `json:"integration_reason,omitempty"`
	OperationState    string             `json:"operation_state,omitempty"`
	Main              *mainRecord        `json:"main,omitempty"`
	Remote            *status.Remote     `json:"remote,omitempty"`
	CI                *forge.CIStatus    `json:"ci,omitempty"`
	Symbols           string             `json:"symbols"`
	Dimmed            bool               `json:"dimmed"`
	IsMain            bool               `json:"is_main"`
	IsCurrent         bool               `json:"is_current"`
	IsPrevious        bool               `json:"is_previous"`
}

func newRecord(r *status.Row) record {
	st := status.Compose(r)
	rec := record{
		Path: r.Path,
		Kind: r.Kind,
		Commit: commitRecord{
			SHA:      r.Commit.SHA,
			ShortSHA: r.Commit.ShortSHA(),
			Message:  r.Commit.Message,
		},
		MainState:         status.MainState(r),
		IntegrationReason: status.IntegrationReason(r),
		OperationState:    status.OperationState(r),
		Symbols:           st.Symbols,
		Dimmed:            st.Dimmed,
		IsMain:            r.IsMain,
		IsCurrent:         r.IsCurrent,
		IsPrevious:        r.IsPrevious,
		Worktree:          newWorktreeRecord(r),
	}
	if r.Branch != "" {
		rec.Branch = &r.Branch
	}
	if !r.Commit.Time.IsZero() {
		rec.Commit.Timestamp = r.Commit.Time.Unix()
	}
	if wt, ok := r.WorkingTree.Get(); ok {
		rec.WorkingTree = &workingTreeRecord{
			Staged:    wt.Staged,
			Modified:  wt.Modified,
			Untracked: wt.Untracked,
			Renamed:   wt.Renamed,
			Deleted:   wt.Deleted,
			Diff:      wt.Diff,
		}
	}
	if d, ok := r.Divergence.Get(); ok && !status.IsTarget(r) {
		rec.Main = &mainRecord{Ahead: d.Ahead, Behind: d.Behind}
		if diff, ok := r.BranchDiff.Get(); ok {
			rec.Main.Diff = &diff
		}
	}
	if rm, ok := r.Remote.Get(); ok {
		rec.Remote = &rm
	}
	if ci, ok := r.CI.Get(); ok {
		rec.CI = &ci
	}
	return rec
}

// JSON buffers rows and prints them as one indented array on Finish.
type JSON struct {
	opts Options
	rows []status.Row
}

// NewJSON creates a batch JSON renderer.
func NewJSON(opts Options) *JSON {
	return &JSON{opts: opts}
}

func (j *JSON) Start(rows []status.Row) {
	j.rows = append([]status.Row(nil), rows...)
}

func (j *JSON) Update(i int, row status.Row) {
	if i >= 0 && i < len(j.rows) {
		j.rows[i] = row
	}
}

func (j *JSON) Finish(s Summary) error {
	records := make([]record, len(j.rows))
	for i := range j.rows {
		records[i] = newRecord(&j.rows[i])
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if _, err := fmt.Fprintln(j.opts.Out, string(data)); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	WriteFooter(j.opts.Err, s)
	return nil
}
