package collect

import (
	"cmp"
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/log"
	"github.com/raphi011/wts/internal/status"
	"github.com/sahilm/fuzzy"
)

// skeleton builds rows from enumerated metadata only. Nothing here waits
// on a per-row fact.
func skeleton(ctx context.Context, repo *git.Repo, inv *git.Inventory, target string, objects git.ObjectReader, opts Options) []status.Row {
	local := make(map[string]git.Branch, len(inv.Branches))
	for _, b := range inv.Branches {
		local[b.Name] = b
	}

	rows := make([]status.Row, 0, len(inv.Worktrees))
	checkedOut := make(map[string]bool)
	for _, wt := range inv.Worktrees {
		row := status.Row{
			Kind:        status.KindWorktree,
			Branch:      wt.Branch,
			Path:        wt.Path,
			Commit:      status.Commit{SHA: wt.Head},
			IsCurrent:   repo.Toplevel != "" && samePath(wt.Path, repo.Toplevel),
			IsPrevious:  wt.Branch != "" && wt.Branch == inv.Previous,
			Locked:      wt.Locked,
			LockReason:  wt.LockReason,
			Prunable:    wt.Prunable,
			PruneReason: wt.PruneReason,
			Bare:        wt.Bare,
			Detached:    wt.Detached,
		}
		if b, ok := local[wt.Branch]; ok && wt.Branch != "" {
			setUpstream(&row, b)
			checkedOut[wt.Branch] = true
		}
		rows = append(rows, row)
	}
	markMainWorktree(rows, target)
	fillCommits(ctx, objects, rows)

	if opts.Branches {
		for _, b := range inv.Branches {
			if checkedOut[b.Name] {
				continue
			}
			row := branchRow(b)
			row.IsMain = b.Name == target
			row.IsPrevious = b.Name == inv.Previous
			setUpstream(&row, b)
			rows = append(rows, row)
		}
	}

	if opts.Remotes {
		for _, b := range inv.Remotes {
			_, short, _ := strings.Cut(b.Name, "/")
			if _, ok := local[short]; ok {
				continue
			}
			row := branchRow(b)
			row.IsRemote = true
			rows = append(rows, row)
		}
	}

	sortRows(rows)
	return rows
}

func branchRow(b git.Branch) status.Row {
	return status.Row{
		Kind:   status.KindBranch,
		Branch: b.Name,
		Commit: status.Commit{SHA: b.Head, Message: b.Subject, Time: b.CommitTime},
	}
}

func setUpstream(row *status.Row, b git.Branch) {
	row.Upstream = b.Upstream
	row.UpstreamRemote = b.UpstreamRemote
	row.UpstreamBranch = b.UpstreamBranch
}

// markMainWorktree flags the worktree holding the target branch, or the
// first non-bare worktree when the target is not checked out.
func markMainWorktree(rows []status.Row, target string) {
	if target != "" {
		for i := range rows {
			if rows[i].Branch == target {
				rows[i].IsMain = true
				return
			}
		}
	}
	for i := range rows {
		if !rows[i].Bare {
			rows[i].IsMain = true
			return
		}
	}
}

// fillCommits adds subject and time to worktree rows. Missing metadata is
// left blank; it never fails the listing.
func fillCommits(ctx context.Context, objects git.ObjectReader, rows []status.Row) {
	var shas []string
	for _, r := range rows {
		if r.Commit.SHA != "" {
			shas = append(shas, r.Commit.SHA)
		}
	}
	if len(shas) == 0 {
		return
	}
	commits, err := objects.Commits(ctx, shas)
	if err != nil {
		log.FromContext(ctx).Debug("commit metadata incomplete", "err", err)
	}
	for i := range rows {
		if c, ok := commits[rows[i].Commit.SHA]; ok {
			rows[i].Commit.Message = c.Subject
			rows[i].Commit.Time = c.Time
		}
	}
}

func rowGroup(r *status.Row) int {
	switch {
	case r.Kind == status.KindWorktree:
		return 0
	case !r.IsRemote:
		return 1
	default:
		return 2
	}
}

// sortRows orders worktrees first (current, then main, then newest
// commit), then local branches, then remote branches, newest first.
func sortRows(rows []status.Row) {
	slices.SortStableFunc(rows, func(a, b status.Row) int {
		if c := cmp.Compare(rowGroup(&a), rowGroup(&b)); c != 0 {
			return c
		}
		if a.IsCurrent != b.IsCurrent {
			if a.IsCurrent {
				return -1
			}
			return 1
		}
		if a.Kind == status.KindWorktree && a.IsMain != b.IsMain {
			if a.IsMain {
				return -1
			}
			return 1
		}
		if c := b.Commit.Time.Compare(a.Commit.Time); c != 0 {
			return c
		}
		return cmp.Or(cmp.Compare(a.Branch, b.Branch), cmp.Compare(a.Path, b.Path))
	})
}

// rowNames adapts rows for fuzzy matching.
type rowNames []status.Row

func (r rowNames) String(i int) string {
	if r[i].Branch != "" {
		return r[i].Branch
	}
	return filepath.Base(r[i].Path)
}

func (r rowNames) Len() int { return len(r) }

// filterRows keeps rows whose branch (or directory, when detached) fuzzily
// matches pattern, preserving order.
func filterRows(rows []status.Row, pattern string) []status.Row {
	if pattern == "" {
		return rows
	}
	matches := fuzzy.FindFrom(pattern, rowNames(rows))
	keep := make([]int, 0, len(matches))
	for _, m := range matches {
		keep = append(keep, m.Index)
	}
	slices.Sort(keep)

	out := make([]status.Row, 0, len(keep))
	for _, i := range keep {
		out = append(out, rows[i])
	}
	return out
}

// samePath compares paths after resolving symlinks, so /tmp and
// /private/tmp style aliases match.
func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}
