package collect

import (
	"context"

	"github.com/raphi011/wts/internal/classify"
	"github.com/raphi011/wts/internal/facts"
	"github.com/raphi011/wts/internal/git"
)

// storeOracle memoizes the oracle answers shared between branches in the
// fact store. Merge bases and tree ids never change for given commits, so
// they are kept for the whole run.
type storeOracle struct {
	store *facts.Store
	next  classify.Oracle
}

func (o storeOracle) MergeBase(ctx context.Context, a, b string) (string, error) {
	return facts.GetOrFetch(ctx, o.store, facts.PairKey(facts.KindMergeBase, a, b), facts.NoExpiry,
		func(ctx context.Context) (string, error) {
			return o.next.MergeBase(ctx, a, b)
		})
}

func (o storeOracle) TreeID(ctx context.Context, sha string) (string, error) {
	return facts.GetOrFetch(ctx, o.store, facts.Key{Kind: facts.KindTree, Commit: sha}, facts.NoExpiry,
		func(ctx context.Context) (string, error) {
			return o.next.TreeID(ctx, sha)
		})
}

func (o storeOracle) HasChanges(ctx context.Context, from, to string) (bool, error) {
	return o.next.HasChanges(ctx, from, to)
}

func (o storeOracle) MergeTree(ctx context.Context, base, branch string) (git.MergeResult, error) {
	return o.next.MergeTree(ctx, base, branch)
}
