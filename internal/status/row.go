package status

import (
	"time"

	"github.com/raphi011/wts/internal/classify"
	"github.com/raphi011/wts/internal/facts"
	"github.com/raphi011/wts/internal/forge"
	"github.com/raphi011/wts/internal/git"
)

// Kind says whether a row has a working directory.
type Kind string

const (
	KindWorktree Kind = "worktree"
	KindBranch   Kind = "branch"
)

// Commit is the head commit of a row.
type Commit struct {
	SHA     string
	Message string
	Time    time.Time
}

// ShortSHA returns the first 7 characters of the commit id.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// Remote is a branch's divergence from its upstream.
type Remote struct {
	Name   string `json:"name"`
	Branch string `json:"branch"`
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
}

// Row is one worktree or branch with everything known about it so far.
//
// The skeleton fields are filled from local metadata before any job runs.
// The facts fill in as jobs finish; each moves from pending to a terminal
// state exactly once.
type Row struct {
	Kind   Kind
	Branch string // empty when detached
	Path   string // empty for branch rows
	Commit Commit

	IsMain     bool // the main worktree, or the target branch for branch rows
	IsCurrent  bool
	IsPrevious bool
	IsRemote   bool // remote-tracking branch without a local branch

	Locked      bool
	LockReason  string
	Prunable    bool
	PruneReason string
	Bare        bool
	Detached    bool

	// Upstream is the tracking branch ("origin/feature"), if any.
	Upstream       string
	UpstreamRemote string
	UpstreamBranch string

	WorkingTree facts.Fact[git.WorkingTree]
	Operation   facts.Fact[git.Operation]
	Divergence  facts.Fact[git.Divergence]
	Integration facts.Fact[classify.Result]
	BranchDiff  facts.Fact[git.LineDiff]
	Remote      facts.Fact[Remote]
	CI          facts.Fact[forge.CIStatus]
}

// HasWorkingTree reports whether the row has files on disk to inspect.
func (r *Row) HasWorkingTree() bool {
	return r.Kind == KindWorktree && !r.Bare && !r.Prunable
}

// Clean reports whether the row has no uncommitted work. Rows without a
// working tree are clean; a worktree whose status is not known is not.
func (r *Row) Clean() bool {
	if !r.HasWorkingTree() {
		return true
	}
	wt, ok := r.WorkingTree.Get()
	return ok && wt.Clean()
}

// Classification returns the settled classification, if known.
func (r *Row) Classification() (classify.Result, bool) {
	res, ok := r.Integration.Get()
	if !ok {
		return classify.Result{}, false
	}
	return res.Settle(r.Clean()), true
}

// Pending counts facts that have not reached a terminal state.
func (r *Row) Pending() int {
	n := 0
	for _, s := range r.states() {
		if s == facts.Pending {
			n++
		}
	}
	return n
}

// TimedOut counts facts that exceeded their budget.
func (r *Row) TimedOut() int {
	n := 0
	for _, s := range r.states() {
		if s == facts.TimedOut {
			n++
		}
	}
	return n
}

func (r *Row) states() []facts.State {
	return []facts.State{
		r.WorkingTree.State,
		r.Operation.State,
		r.Divergence.State,
		r.Integration.State,
		r.BranchDiff.State,
		r.Remote.State,
		r.CI.State,
	}
}
