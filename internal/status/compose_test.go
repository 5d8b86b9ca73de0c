package status

import (
	"errors"
	"testing"

	"github.com/raphi011/wts/internal/classify"
	"github.com/raphi011/wts/internal/git"
)

// worktreeRow returns a worktree row whose working tree and classification are known.
func worktreeRow(wt git.WorkingTree, res classify.Result) *Row {
	r := &Row{Kind: KindWorktree, Branch: "feature", Path: "/src/feature"}
	r.WorkingTree.Request()
	r.WorkingTree.Resolve(wt, nil)
	r.Integration.Request()
	r.Integration.Resolve(res, nil)
	return r
}

func TestCompose_Symbols(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  func() *Row
		want string
	}{
		{
			name: "empty row shows nothing",
			row:  func() *Row { return &Row{Kind: KindWorktree} },
			want: "",
		},
		{
			name: "ahead and modified",
			row: func() *Row {
				return worktreeRow(git.WorkingTree{Modified: true}, classify.Result{State: classify.Ahead})
			},
			want: "↑!",
		},
		{
			name: "one working tree symbol, staged first",
			row: func() *Row {
				return worktreeRow(git.WorkingTree{Staged: true, Modified: true, Untracked: true}, classify.Result{State: classify.Diverged})
			},
			want: "↕+",
		},
		{
			name: "untracked only",
			row: func() *Row {
				return worktreeRow(git.WorkingTree{Untracked: true}, classify.Result{State: classify.Ahead})
			},
			want: "↑?",
		},
		{
			name: "conflict comes first",
			row: func() *Row {
				r := worktreeRow(git.WorkingTree{Conflicts: true, Modified: true}, classify.Result{State: classify.Diverged})
				r.Operation.Request()
				r.Operation.Resolve(git.OperationRebase, nil)
				return r
			},
			want: "✘⤴↕!",
		},
		{
			name: "locked beats prunable",
			row: func() *Row {
				r := &Row{Kind: KindWorktree, Locked: true, Prunable: true}
				return r
			},
			want: "⊞",
		},
		{
			name: "bare",
			row:  func() *Row { return &Row{Kind: KindWorktree, Bare: true} },
			want: "⊡",
		},
		{
			name: "branch without worktree",
			row: func() *Row {
				r := &Row{Kind: KindBranch, Branch: "old"}
				r.Integration.Request()
				r.Integration.Resolve(classify.Result{State: classify.Integrated, Reason: classify.ReasonAncestor}, nil)
				return r
			},
			want: "/⊂",
		},
		{
			name: "merge in progress",
			row: func() *Row {
				r := worktreeRow(git.WorkingTree{Staged: true}, classify.Result{State: classify.Ahead})
				r.Operation.Request()
				r.Operation.Resolve(git.OperationMerge, nil)
				return r
			},
			want: "⤵↑+",
		},
		{
			name: "target with remote ahead",
			row: func() *Row {
				r := worktreeRow(git.WorkingTree{}, classify.Result{State: classify.IsTarget})
				r.Remote.Request()
				r.Remote.Resolve(Remote{Name: "origin", Branch: "main", Ahead: 2}, nil)
				return r
			},
			want: "^⇡",
		},
		{
			name: "remote in sync",
			row: func() *Row {
				r := worktreeRow(git.WorkingTree{}, classify.Result{State: classify.SameCommit})
				r.Remote.Request()
				r.Remote.Resolve(Remote{Name: "origin", Branch: "feature"}, nil)
				return r
			},
			want: "_|",
		},
		{
			name: "same commit with changes",
			row: func() *Row {
				return worktreeRow(git.WorkingTree{Modified: true}, classify.Result{State: classify.SameCommit})
			},
			want: "–!",
		},
		{
			name: "branch row on target commit",
			row: func() *Row {
				r := &Row{Kind: KindBranch}
				r.Integration.Request()
				r.Integration.Resolve(classify.Result{State: classify.SameCommit}, nil)
				return r
			},
			want: "/_",
		},
		{
			name: "remote diverged and behind",
			row: func() *Row {
				r := worktreeRow(git.WorkingTree{}, classify.Result{State: classify.Behind})
				r.Remote.Request()
				r.Remote.Resolve(Remote{Ahead: 1, Behind: 1}, nil)
				return r
			},
			want: "↓⇅",
		},
		{
			name: "would conflict",
			row: func() *Row {
				return worktreeRow(git.WorkingTree{}, classify.Result{State: classify.WouldConflict})
			},
			want: "✗",
		},
		{
			name: "failed facts contribute nothing",
			row: func() *Row {
				r := &Row{Kind: KindWorktree}
				r.WorkingTree.Request()
				r.WorkingTree.Resolve(git.WorkingTree{}, errors.New("boom"))
				r.Integration.Request()
				return r
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Compose(tt.row()).Symbols; got != tt.want {
				t.Errorf("Compose().Symbols = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompose_Dimmed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  func() *Row
		want bool
	}{
		{
			name: "same commit and clean",
			row:  func() *Row { return worktreeRow(git.WorkingTree{}, classify.Result{State: classify.SameCommit}) },
			want: true,
		},
		{
			name: "same commit with changes",
			row: func() *Row {
				return worktreeRow(git.WorkingTree{Modified: true}, classify.Result{State: classify.SameCommit})
			},
			want: false,
		},
		{
			name: "integrated with changes",
			row: func() *Row {
				return worktreeRow(git.WorkingTree{Untracked: true}, classify.Result{State: classify.Integrated, Reason: classify.ReasonTreesMatch})
			},
			want: true,
		},
		{
			name: "ahead",
			row:  func() *Row { return worktreeRow(git.WorkingTree{}, classify.Result{State: classify.Ahead}) },
			want: false,
		},
		{
			name: "same commit, working tree unknown",
			row: func() *Row {
				r := &Row{Kind: KindWorktree}
				r.WorkingTree.Request()
				r.Integration.Request()
				r.Integration.Resolve(classify.Result{State: classify.SameCommit}, nil)
				return r
			},
			want: false,
		},
		{
			name: "branch row on target commit",
			row: func() *Row {
				r := &Row{Kind: KindBranch}
				r.Integration.Request()
				r.Integration.Resolve(classify.Result{State: classify.SameCommit}, nil)
				return r
			},
			want: true,
		},
		{
			name: "classification unknown",
			row:  func() *Row { return &Row{Kind: KindWorktree} },
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Compose(tt.row()).Dimmed; got != tt.want {
				t.Errorf("Compose().Dimmed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStructuredStates(t *testing.T) {
	t.Parallel()

	clean := worktreeRow(git.WorkingTree{}, classify.Result{State: classify.SameCommit})
	if got := MainState(clean); got != "empty" {
		t.Errorf("MainState() = %q, want empty", got)
	}
	if got := IntegrationReason(clean); got != "" {
		t.Errorf("IntegrationReason() = %q, want empty string", got)
	}

	squashed := worktreeRow(git.WorkingTree{}, classify.Result{State: classify.Integrated, Reason: classify.ReasonTreesMatch})
	if got := MainState(squashed); got != "integrated" {
		t.Errorf("MainState() = %q, want integrated", got)
	}
	if got := IntegrationReason(squashed); got != "trees_match" {
		t.Errorf("IntegrationReason() = %q, want trees_match", got)
	}

	conflicted := worktreeRow(git.WorkingTree{Conflicts: true}, classify.Result{State: classify.Ahead})
	conflicted.Operation.Request()
	conflicted.Operation.Resolve(git.OperationRebase, nil)
	if got := OperationState(conflicted); got != "conflicts" {
		t.Errorf("OperationState() = %q, want conflicts", got)
	}

	rebasing := worktreeRow(git.WorkingTree{}, classify.Result{State: classify.Ahead})
	rebasing.Operation.Request()
	rebasing.Operation.Resolve(git.OperationRebase, nil)
	if got := OperationState(rebasing); got != "rebase" {
		t.Errorf("OperationState() = %q, want rebase", got)
	}

	if got := OperationState(&Row{}); got != "" {
		t.Errorf("OperationState() = %q for a row without facts", got)
	}
	if got := MainState(&Row{}); got != "" {
		t.Errorf("MainState() = %q for a row without facts", got)
	}
}

func TestRow_Counters(t *testing.T) {
	t.Parallel()

	r := &Row{Kind: KindWorktree}
	r.WorkingTree.Request()
	r.Integration.Request()
	r.CI.Request()
	if got := r.Pending(); got != 3 {
		t.Errorf("Pending() = %d, want 3", got)
	}

	r.CI.Expire()
	r.WorkingTree.Resolve(git.WorkingTree{}, nil)
	if got := r.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want 1", got)
	}
	if got := r.TimedOut(); got != 1 {
		t.Errorf("TimedOut() = %d, want 1", got)
	}
}

func TestCommit_ShortSHA(t *testing.T) {
	t.Parallel()

	if got := (Commit{SHA: "0123456789abcdef"}).ShortSHA(); got != "0123456" {
		t.Errorf("ShortSHA() = %q", got)
	}
	if got := (Commit{SHA: "abc"}).ShortSHA(); got != "abc" {
		t.Errorf("ShortSHA() = %q", got)
	}
}
