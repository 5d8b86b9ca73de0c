package classify

import (
	"context"

	"github.com/raphi011/wts/internal/git"
)

// GitOracle answers rule questions directly from the repository, without
// memoizing.
type GitOracle struct {
	Dir     string
	Objects git.ObjectReader
}

func (o *GitOracle) MergeBase(ctx context.Context, a, b string) (string, error) {
	return git.MergeBase(ctx, o.Dir, a, b)
}

func (o *GitOracle) HasChanges(ctx context.Context, from, to string) (bool, error) {
	return git.HasChanges(ctx, o.Dir, from, to)
}

func (o *GitOracle) TreeID(ctx context.Context, sha string) (string, error) {
	return o.Objects.TreeID(ctx, sha)
}

func (o *GitOracle) MergeTree(ctx context.Context, base, branch string) (git.MergeResult, error) {
	return git.MergeTree(ctx, o.Dir, base, branch)
}
