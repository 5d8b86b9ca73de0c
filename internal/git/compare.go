package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// LineDiff counts added and deleted lines.
type LineDiff struct {
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

// IsZero reports whether no lines changed.
func (d LineDiff) IsZero() bool {
	return d.Added == 0 && d.Deleted == 0
}

// Divergence counts commits on each side of a comparison.
type Divergence struct {
	Ahead  int
	Behind int
}

// MergeBase returns the best common ancestor of a and b.
// Returns "" without error when the histories are unrelated.
func MergeBase(ctx context.Context, dir, a, b string) (string, error) {
	sha, err := outputGitLine(ctx, dir, "merge-base", a, b)
	if err != nil {
		if exitedWith(err, 1) {
			return "", nil
		}
		return "", fmt.Errorf("merge-base %s %s: %w", a, b, err)
	}
	return sha, nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error) {
	err := runGit(ctx, dir, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	if exitedWith(err, 1) {
		return false, nil
	}
	return false, fmt.Errorf("merge-base --is-ancestor: %w", err)
}

// CountDivergence counts commits in head but not base (ahead) and in base but
// not head (behind).
func CountDivergence(ctx context.Context, dir, base, head string) (Divergence, error) {
	line, err := outputGitLine(ctx, dir, "rev-list", "--left-right", "--count", base+"..."+head)
	if err != nil {
		return Divergence{}, fmt.Errorf("count %s...%s: %w", base, head, err)
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Divergence{}, fmt.Errorf("unexpected rev-list output %q", line)
	}
	behind, err := strconv.Atoi(fields[0])
	if err != nil {
		return Divergence{}, fmt.Errorf("parse behind count: %w", err)
	}
	ahead, err := strconv.Atoi(fields[1])
	if err != nil {
		return Divergence{}, fmt.Errorf("parse ahead count: %w", err)
	}
	return Divergence{Ahead: ahead, Behind: behind}, nil
}

// HasChanges reports whether the trees of from and to differ.
func HasChanges(ctx context.Context, dir, from, to string) (bool, error) {
	err := runGit(ctx, dir, "diff", "--quiet", "--no-ext-diff", "--no-renames", from, to)
	if err == nil {
		return false, nil
	}
	if exitedWith(err, 1) {
		return true, nil
	}
	return false, fmt.Errorf("diff %s %s: %w", from, to, err)
}

// DiffStat sums the line changes between from and to.
func DiffStat(ctx context.Context, dir, from, to string) (LineDiff, error) {
	out, err := outputGit(ctx, dir, "diff", "--numstat", "--no-ext-diff", from, to)
	if err != nil {
		return LineDiff{}, fmt.Errorf("diff --numstat %s %s: %w", from, to, err)
	}
	return parseNumstat(string(out)), nil
}

// parseNumstat sums `git diff --numstat` output. Binary files ("-") count as zero.
func parseNumstat(s string) LineDiff {
	var d LineDiff
	for _, line := range strings.Split(s, "\n") {
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		if n, err := strconv.Atoi(parts[0]); err == nil {
			d.Added += n
		}
		if n, err := strconv.Atoi(parts[1]); err == nil {
			d.Deleted += n
		}
	}
	return d
}

// MergeResult is the outcome of a simulated merge.
type MergeResult struct {
	Tree      string
	Conflicts bool
}

// MergeTree simulates merging branch into base without touching any
// worktree or ref (git merge-tree --write-tree, git >= 2.38).
func MergeTree(ctx context.Context, dir, base, branch string) (MergeResult, error) {
	out, err := outputGit(ctx, dir, "merge-tree", "--write-tree", "--no-messages", base, branch)
	conflicts := false
	if err != nil {
		if !exitedWith(err, 1) {
			return MergeResult{}, fmt.Errorf("merge-tree %s %s: %w", base, branch, err)
		}
		conflicts = true
	}
	tree, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if tree == "" {
		return MergeResult{}, fmt.Errorf("merge-tree %s %s: no tree in output", base, branch)
	}
	return MergeResult{Tree: strings.TrimSpace(tree), Conflicts: conflicts}, nil
}
