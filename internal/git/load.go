package git

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Inventory is everything enumerated about a repository before any
// per-row fact is fetched.
type Inventory struct {
	Worktrees []Worktree
	Branches  []Branch
	Remotes   []Branch
	// Previous is the branch checked out before the current one, if known.
	Previous string
}

// LoadOptions selects which optional refs LoadInventory enumerates.
type LoadOptions struct {
	Remotes bool
}

// LoadInventory enumerates worktrees and refs in parallel.
// Any enumeration failure is returned; the previous-branch lookup is best effort.
func LoadInventory(ctx context.Context, repo *Repo, opts LoadOptions) (*Inventory, error) {
	var inv Inventory

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wts, err := ListWorktrees(ctx, repo.Dir)
		inv.Worktrees = wts
		return err
	})
	g.Go(func() error {
		branches, err := ListBranches(ctx, repo.Dir)
		inv.Branches = branches
		return err
	})
	if opts.Remotes {
		g.Go(func() error {
			remotes, err := ListRemoteBranches(ctx, repo.Dir)
			inv.Remotes = remotes
			return err
		})
	}
	if !repo.Bare {
		g.Go(func() error {
			inv.Previous = PreviousBranch(ctx, repo.Dir)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &inv, nil
}
