package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Worktree is one entry of `git worktree list --porcelain`.
type Worktree struct {
	Path   string
	Head   string
	Branch string // short name; empty when detached or bare

	Bare     bool
	Detached bool

	Locked     bool
	LockReason string

	Prunable    bool
	PruneReason string
}

// ListWorktrees enumerates all worktrees of the repository containing dir.
// The first entry is always the main worktree.
func ListWorktrees(ctx context.Context, dir string) ([]Worktree, error) {
	out, err := outputGit(ctx, dir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	return parseWorktreePorcelain(string(out)), nil
}

// parseWorktreePorcelain parses blank-line separated worktree records.
// Unknown keys are ignored so newer git versions don't break parsing.
func parseWorktreePorcelain(s string) []Worktree {
	var (
		worktrees []Worktree
		current   *Worktree
	)
	flush := func() {
		if current != nil && current.Path != "" {
			worktrees = append(worktrees, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			flush()
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		if key == "worktree" {
			flush()
			current = &Worktree{Path: filepath.Clean(value)}
			continue
		}
		if current == nil {
			continue
		}
		switch key {
		case "HEAD":
			current.Head = value
		case "branch":
			current.Branch = strings.TrimPrefix(value, "refs/heads/")
		case "bare":
			current.Bare = true
		case "detached":
			current.Detached = true
		case "locked":
			current.Locked = true
			current.LockReason = value
		case "prunable":
			current.Prunable = true
			current.PruneReason = value
		}
	}
	flush()

	return worktrees
}
