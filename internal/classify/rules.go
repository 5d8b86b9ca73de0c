package classify

import "context"

// Rule inspects a branch and either decides its classification or passes.
type Rule func(ctx context.Context, in Input) (Result, bool, error)

// Chain is the full rule order, cheapest first.
var Chain = []Rule{
	SameCommitRule,
	AncestorRule,
	NoAddedChangesRule,
	TreesMatchRule,
	MergeAddsNothingRule,
}

// StaleChain is used for branches too far behind for the expensive
// rules to be worth running.
var StaleChain = []Rule{
	SameCommitRule,
}

// FirstMatch combines rules into one that returns the first decision.
// Later rules are not evaluated once one matches or fails.
func FirstMatch(rules ...Rule) Rule {
	return func(ctx context.Context, in Input) (Result, bool, error) {
		for _, rule := range rules {
			if err := ctx.Err(); err != nil {
				return Result{}, false, err
			}
			r, ok, err := rule(ctx, in)
			if err != nil || ok {
				return r, ok, err
			}
		}
		return Result{}, false, nil
	}
}

// SameCommitRule matches a branch pointing at the target commit, or at the
// local default branch when the target is its upstream.
func SameCommitRule(_ context.Context, in Input) (Result, bool, error) {
	head := in.Branch.Head
	if head == in.Target.Head || (in.LocalHead != "" && head == in.LocalHead) {
		return Result{State: SameCommit}, true, nil
	}
	return Result{}, false, nil
}

// AncestorRule matches a branch whose head is already part of the target's
// history (fast-forward merges, rebases onto the target).
func AncestorRule(ctx context.Context, in Input) (Result, bool, error) {
	base, err := in.Oracle.MergeBase(ctx, in.Branch.Head, in.Target.Head)
	if err != nil {
		return Result{}, false, err
	}
	if base != "" && base == in.Branch.Head {
		return integrated(ReasonAncestor), true, nil
	}
	return Result{}, false, nil
}

// NoAddedChangesRule matches a branch whose commits, taken together,
// change nothing relative to where it forked off the target.
func NoAddedChangesRule(ctx context.Context, in Input) (Result, bool, error) {
	base, err := in.Oracle.MergeBase(ctx, in.Branch.Head, in.Target.Head)
	if err != nil || base == "" {
		return Result{}, false, err
	}
	changed, err := in.Oracle.HasChanges(ctx, base, in.Branch.Head)
	if err != nil {
		return Result{}, false, err
	}
	if !changed {
		return integrated(ReasonNoAddedChanges), true, nil
	}
	return Result{}, false, nil
}

// TreesMatchRule matches a branch whose files are identical to the
// target's, as after a squash merge.
func TreesMatchRule(ctx context.Context, in Input) (Result, bool, error) {
	branchTree, err := in.Oracle.TreeID(ctx, in.Branch.Head)
	if err != nil {
		return Result{}, false, err
	}
	targetTree, err := in.Oracle.TreeID(ctx, in.Target.Head)
	if err != nil {
		return Result{}, false, err
	}
	if branchTree == targetTree {
		return integrated(ReasonTreesMatch), true, nil
	}
	return Result{}, false, nil
}

// MergeAddsNothingRule simulates merging the branch into the target. If
// the result is the target's own tree, the branch was integrated earlier
// and the target has moved on since. A conflicting simulation decides
// WouldConflict, since it is the last rule.
func MergeAddsNothingRule(ctx context.Context, in Input) (Result, bool, error) {
	base, err := in.Oracle.MergeBase(ctx, in.Branch.Head, in.Target.Head)
	if err != nil || base == "" {
		// Unrelated histories cannot be merged.
		return Result{}, false, err
	}
	merged, err := in.Oracle.MergeTree(ctx, in.Target.Head, in.Branch.Head)
	if err != nil {
		return Result{}, false, err
	}
	if merged.Conflicts {
		return Result{State: WouldConflict}, true, nil
	}
	targetTree, err := in.Oracle.TreeID(ctx, in.Target.Head)
	if err != nil {
		return Result{}, false, err
	}
	if merged.Tree == targetTree {
		return integrated(ReasonMergeAddsNothing), true, nil
	}
	return Result{}, false, nil
}

func integrated(reason Reason) Result {
	return Result{State: Integrated, Reason: reason}
}
