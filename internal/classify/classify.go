package classify

import (
	"context"
	"fmt"

	"github.com/raphi011/wts/internal/git"
)

// State is the relationship of a branch to the target.
type State string

const (
	IsTarget      State = "is_main"
	WouldConflict State = "would_conflict"
	Empty         State = "empty"
	SameCommit    State = "same_commit"
	Integrated    State = "integrated"
	Diverged      State = "diverged"
	Ahead         State = "ahead"
	Behind        State = "behind"
)

// Reason says how an integrated branch was detected.
type Reason string

const (
	ReasonAncestor         Reason = "ancestor"
	ReasonNoAddedChanges   Reason = "no_added_changes"
	ReasonTreesMatch       Reason = "trees_match"
	ReasonMergeAddsNothing Reason = "merge_adds_nothing"
)

// Result is the outcome of classifying one branch.
type Result struct {
	State State `json:"state"`
	// Reason is set only when State is Integrated.
	Reason Reason `json:"reason,omitempty"`
}

// Settle folds in the working tree: a branch on the target commit with
// nothing uncommitted (or without a worktree) has no work at all.
func (r Result) Settle(clean bool) Result {
	if r.State == SameCommit && clean {
		return Result{State: Empty}
	}
	return r
}

// IsIntegrated reports whether the branch's work is already in the target.
func (r Result) IsIntegrated() bool {
	return r.State == Integrated
}

func (r Result) String() string {
	if r.Reason != "" {
		return string(r.State) + "(" + string(r.Reason) + ")"
	}
	return string(r.State)
}

// Snapshot pins a branch to a commit for the duration of one classification.
type Snapshot struct {
	Name string
	Head string
}

// Oracle answers the repository questions the rules ask. Implementations
// are expected to memoize; rules ask the same question more than once.
type Oracle interface {
	MergeBase(ctx context.Context, a, b string) (string, error)
	// HasChanges reports whether the trees of from and to differ.
	HasChanges(ctx context.Context, from, to string) (bool, error)
	TreeID(ctx context.Context, sha string) (string, error)
	MergeTree(ctx context.Context, base, branch string) (git.MergeResult, error)
}

// Input is everything a classification needs.
type Input struct {
	Branch Snapshot
	Target Snapshot
	// LocalHead is the local default branch head when Target is its
	// upstream. A branch there counts as on the target commit.
	LocalHead string
	// Counts is the divergence of Branch from Target.
	Counts git.Divergence
	Oracle Oracle
	// IsTarget is set for the target branch itself.
	IsTarget bool
	// Stale skips the expensive rules for branches far behind the target.
	Stale bool
}

// Classify runs the rule chain for in. The first matching rule decides;
// when none matches, the divergence counts do.
func Classify(ctx context.Context, in Input) (Result, error) {
	if in.IsTarget {
		return Result{State: IsTarget}, nil
	}
	if in.Branch.Head == "" || in.Target.Head == "" {
		return Result{}, fmt.Errorf("classify %s: missing head commit", in.Branch.Name)
	}

	rules := Chain
	if in.Stale {
		rules = StaleChain
	}

	r, ok, err := FirstMatch(rules...)(ctx, in)
	if err != nil {
		return Result{}, fmt.Errorf("classify %s: %w", in.Branch.Name, err)
	}
	if ok {
		return r, nil
	}
	return byCounts(in.Counts), nil
}

func byCounts(d git.Divergence) Result {
	switch {
	case d.Ahead > 0 && d.Behind > 0:
		return Result{State: Diverged}
	case d.Ahead > 0:
		return Result{State: Ahead}
	case d.Behind > 0:
		return Result{State: Behind}
	default:
		return Result{State: SameCommit}
	}
}
