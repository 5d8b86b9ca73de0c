package collect

import (
	"context"
	"errors"

	"github.com/raphi011/wts/internal/classify"
	"github.com/raphi011/wts/internal/facts"
	"github.com/raphi011/wts/internal/forge"
	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/log"
	"github.com/raphi011/wts/internal/sched"
	"github.com/raphi011/wts/internal/status"
)

// errUpstreamGone marks a tracking branch whose remote ref was deleted.
// The remote fact stays blank without a warning.
var errUpstreamGone = errors.New("upstream gone")

// task is a scheduled job bound to the fact it settles.
type task struct {
	job   sched.Job
	row   int
	name  string
	apply func(r *status.Row, out sched.Outcome) bool
}

// newTask requests the fact on row and returns the job that settles it.
func newTask[T any](rows []status.Row, row int, name string, prio sched.Priority,
	fact func(*status.Row) *facts.Fact[T], run func(context.Context) (T, error)) task {
	fact(&rows[row]).Request()
	return task{
		job: sched.Job{
			Name:     name,
			Priority: prio,
			Run: func(ctx context.Context) (any, error) {
				v, err := run(ctx)
				return v, err
			},
		},
		row:  row,
		name: name,
		apply: func(r *status.Row, out sched.Outcome) bool {
			f := fact(r)
			switch {
			case out.TimedOut:
				return f.Expire()
			case out.Canceled:
				var zero T
				return f.Resolve(zero, out.Err)
			}
			v, _ := out.Value.(T)
			return f.Resolve(v, out.Err)
		},
	}
}

// Fact accessors.
func workingTreeOf(r *status.Row) *facts.Fact[git.WorkingTree] { return &r.WorkingTree }
func operationOf(r *status.Row) *facts.Fact[git.Operation]     { return &r.Operation }
func divergenceOf(r *status.Row) *facts.Fact[git.Divergence]   { return &r.Divergence }
func integrationOf(r *status.Row) *facts.Fact[classify.Result] { return &r.Integration }
func branchDiffOf(r *status.Row) *facts.Fact[git.LineDiff]     { return &r.BranchDiff }
func remoteOf(r *status.Row) *facts.Fact[status.Remote]        { return &r.Remote }
func ciOf(r *status.Row) *facts.Fact[forge.CIStatus]           { return &r.CI }

// plan requests every fact that applies to each row and returns the jobs
// that will settle them. Must run before the rows are handed to the
// renderer so the skeleton shows which cells are pending.
func (c *collector) plan() []task {
	var tasks []task
	rows := c.rows
	for i := range rows {
		r := rows[i]
		head := r.Commit.SHA

		if r.HasWorkingTree() {
			path := r.Path
			tasks = append(tasks,
				newTask(rows, i, "working tree", sched.PriorityLocal, workingTreeOf,
					func(ctx context.Context) (git.WorkingTree, error) {
						return git.GetWorkingTree(ctx, path)
					}),
				newTask(rows, i, "operation", sched.PriorityLocal, operationOf,
					func(ctx context.Context) (git.Operation, error) {
						return git.GetOperation(ctx, path)
					}),
			)
		}
		if head == "" {
			continue
		}

		if c.hasTarget {
			tasks = append(tasks, newTask(rows, i, "divergence", sched.PriorityLocal, divergenceOf,
				func(ctx context.Context) (git.Divergence, error) {
					return c.divergence(ctx, head)
				}))

			isTarget := !r.IsRemote && r.Branch == c.target.Branch
			if isTarget {
				rows[i].Integration.Request()
				rows[i].Integration.Resolve(classify.Result{State: classify.IsTarget}, nil)
			} else {
				name := r.Branch
				tasks = append(tasks, newTask(rows, i, "classify", sched.PriorityLocal, integrationOf,
					func(ctx context.Context) (classify.Result, error) {
						return c.classify(ctx, name, head)
					}))
				if c.opts.Full {
					tasks = append(tasks, newTask(rows, i, "branch diff", sched.PriorityLocal, branchDiffOf,
						func(ctx context.Context) (git.LineDiff, error) {
							return c.branchDiff(ctx, head)
						}))
				}
			}
		}

		if r.Upstream != "" {
			up := status.Remote{Name: r.UpstreamRemote, Branch: r.UpstreamBranch}
			upstream := r.Upstream
			tasks = append(tasks, newTask(rows, i, "remote", sched.PriorityLocal, remoteOf,
				func(ctx context.Context) (status.Remote, error) {
					return c.remote(ctx, upstream, head, up)
				}))
		}

		if c.opts.Full && c.forge != nil && r.Branch != "" && !r.IsRemote {
			q := forge.Query{
				Dir:         c.repo.Dir,
				Branch:      r.Branch,
				Head:        head,
				HasUpstream: r.Upstream != "",
				RepoPath:    c.repoPath,
			}
			tasks = append(tasks, newTask(rows, i, "ci", sched.PriorityNetwork, ciOf,
				func(ctx context.Context) (forge.CIStatus, error) {
					return c.ci(ctx, q)
				}))
		}
	}
	return tasks
}

func (c *collector) divergence(ctx context.Context, head string) (git.Divergence, error) {
	key := facts.Key{Kind: facts.KindDivergence, Branch: c.target.Head, Commit: head}
	return facts.GetOrFetch(ctx, c.store, key, facts.NoExpiry, func(ctx context.Context) (git.Divergence, error) {
		return git.CountDivergence(ctx, c.repo.Dir, c.target.Head, head)
	})
}

func (c *collector) classify(ctx context.Context, name, head string) (classify.Result, error) {
	counts, err := c.divergence(ctx, head)
	if err != nil {
		return classify.Result{}, err
	}
	stale := c.opts.StaleThreshold > 0 && counts.Behind > c.opts.StaleThreshold
	if stale {
		log.FromContext(ctx).Debug("stale branch, skipping expensive rules", "branch", name, "behind", counts.Behind)
	}
	return classify.Classify(ctx, classify.Input{
		Branch:    classify.Snapshot{Name: name, Head: head},
		Target:    classify.Snapshot{Name: c.target.Ref, Head: c.target.Head},
		LocalHead: c.target.LocalHead,
		Counts:    counts,
		Oracle:    c.oracle,
		Stale:     stale,
	})
}

// branchDiff counts the lines the branch adds since it forked from the target.
func (c *collector) branchDiff(ctx context.Context, head string) (git.LineDiff, error) {
	base, err := c.oracle.MergeBase(ctx, c.target.Head, head)
	if err != nil || base == "" {
		return git.LineDiff{}, err
	}
	return git.DiffStat(ctx, c.repo.Dir, base, head)
}

func (c *collector) remote(ctx context.Context, upstream, head string, rm status.Remote) (status.Remote, error) {
	upHead, err := git.RevParse(ctx, c.repo.Dir, upstream)
	if err != nil {
		if ctx.Err() != nil {
			return rm, ctx.Err()
		}
		return rm, errUpstreamGone
	}
	d, err := git.CountDivergence(ctx, c.repo.Dir, upHead, head)
	if err != nil {
		return rm, err
	}
	rm.Ahead, rm.Behind = d.Ahead, d.Behind
	return rm, nil
}

// ci looks up the CI status, once the forge CLI is known to be usable.
// Transient forge failures show as an error status and are not cached.
func (c *collector) ci(ctx context.Context, q forge.Query) (forge.CIStatus, error) {
	if err := c.forgeReady(ctx); err != nil {
		return forge.CIStatus{}, err
	}
	key := facts.Key{Kind: facts.KindCI, Branch: q.Branch, Commit: q.Head}
	ttl := facts.CITTL(c.opts.CITTL, c.repo.CommonDir)
	st, err := facts.GetOrFetch(ctx, c.store, key, ttl, func(ctx context.Context) (forge.CIStatus, error) {
		return c.forge.CIStatus(ctx, q)
	})
	if forge.IsRetriable(err) && ctx.Err() == nil {
		c.warn("ci", err)
		return forge.CIStatus{Status: forge.StatusError}, nil
	}
	return st, err
}

// forgeReady checks the forge CLI once per run. A failed check is cached
// as a message so every CI job reports it without rerunning the CLI.
func (c *collector) forgeReady(ctx context.Context) error {
	key := facts.Key{Kind: facts.KindForgeAuth, Branch: c.forge.Name()}
	msg, err := facts.GetOrFetch(ctx, c.store, key, facts.NoExpiry, func(ctx context.Context) (string, error) {
		if err := c.forge.Check(ctx); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return err.Error(), nil
		}
		return "", nil
	})
	if err != nil {
		return err
	}
	if msg != "" {
		return errors.New(msg)
	}
	return nil
}
