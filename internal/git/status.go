package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WorkingTree summarises `git status` for one worktree.
type WorkingTree struct {
	Staged    bool
	Modified  bool
	Untracked bool
	Renamed   bool
	Deleted   bool
	Conflicts bool

	// Diff counts uncommitted line changes against HEAD.
	Diff LineDiff
}

// Clean reports whether the worktree has no uncommitted changes at all.
func (w WorkingTree) Clean() bool {
	return !w.Staged && !w.Modified && !w.Untracked && !w.Renamed && !w.Deleted && !w.Conflicts
}

// GetWorkingTree reads status flags and the line diff against HEAD.
func GetWorkingTree(ctx context.Context, path string) (WorkingTree, error) {
	out, err := outputGit(ctx, path, "status", "--porcelain=v1", "-z", "--untracked-files=normal", "--ignore-submodules=dirty")
	if err != nil {
		return WorkingTree{}, fmt.Errorf("status: %w", err)
	}
	wt := parseStatusPorcelain(string(out))

	if !wt.Clean() {
		// Unborn HEAD has nothing to diff against; flags are still valid.
		if numstat, err := outputGit(ctx, path, "diff", "--numstat", "--no-ext-diff", "HEAD"); err == nil {
			wt.Diff = parseNumstat(string(numstat))
		} else if ctx.Err() != nil {
			return WorkingTree{}, ctx.Err()
		}
	}
	return wt, nil
}

// parseStatusPorcelain parses NUL-separated `git status --porcelain=v1 -z` entries.
func parseStatusPorcelain(s string) WorkingTree {
	var wt WorkingTree
	entries := strings.Split(s, "\x00")
	for i := 0; i < len(entries); i++ {
		e := entries[i]
		if len(e) < 3 {
			continue
		}
		x, y := e[0], e[1]
		switch {
		case x == '?' && y == '?':
			wt.Untracked = true
			continue
		case x == '!' && y == '!':
			continue
		case isUnmerged(x, y):
			wt.Conflicts = true
			continue
		}

		switch x {
		case 'R', 'C':
			wt.Renamed = true
			wt.Staged = true
			// Renames and copies carry the source path as a separate entry.
			i++
		case 'D':
			wt.Deleted = true
			wt.Staged = true
		case 'M', 'A', 'T':
			wt.Staged = true
		}
		switch y {
		case 'M', 'T':
			wt.Modified = true
		case 'D':
			wt.Deleted = true
		}
	}
	return wt
}

func isUnmerged(x, y byte) bool {
	return x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D')
}

// Operation is an in-progress git operation in a worktree.
type Operation string

const (
	OperationNone   Operation = ""
	OperationRebase Operation = "rebase"
	OperationMerge  Operation = "merge"
)

// GetOperation detects a rebase or merge in progress in the worktree at path.
func GetOperation(ctx context.Context, path string) (Operation, error) {
	gitDir, err := outputGitLine(ctx, path, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return OperationNone, fmt.Errorf("locate git dir: %w", err)
	}
	return operationInGitDir(gitDir), nil
}

func operationInGitDir(gitDir string) Operation {
	for _, name := range []string{"rebase-merge", "rebase-apply"} {
		if exists(filepath.Join(gitDir, name)) {
			return OperationRebase
		}
	}
	if exists(filepath.Join(gitDir, "MERGE_HEAD")) {
		return OperationMerge
	}
	return OperationNone
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
