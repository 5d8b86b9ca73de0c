package collect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raphi011/wts/internal/classify"
	"github.com/raphi011/wts/internal/facts"
	"github.com/raphi011/wts/internal/forge"
	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/log"
	"github.com/raphi011/wts/internal/render"
	"github.com/raphi011/wts/internal/sched"
	"github.com/raphi011/wts/internal/status"
	"golang.org/x/sync/errgroup"
)

// Options control one collection run.
type Options struct {
	// Dir is any directory inside the repository.
	Dir string

	Branches bool // include branches without a worktree
	Remotes  bool // include remote branches without a local branch
	Full     bool // include CI status and branch diff stats
	// Pattern fuzzy-filters rows by branch name.
	Pattern string

	Concurrency int
	// Timeout bounds each job; 0 disables it.
	Timeout time.Duration
	// StaleThreshold is the number of commits behind the target after which
	// only cheap classification rules run; 0 disables the shortcut.
	StaleThreshold int
	// CITTL is the base lifetime of cached CI results.
	CITTL time.Duration
	// Hosts maps custom domains to forge types.
	Hosts map[string]string

	// Hard is cancelled to kill running jobs. ctx passed to Run only stops
	// dispatch. Defaults to never.
	Hard context.Context
}

// collector holds the state of one run.
type collector struct {
	opts     Options
	repo     *git.Repo
	store    *facts.Store
	renderer render.Renderer

	target    git.Target
	hasTarget bool
	oracle    classify.Oracle

	forge    forge.Forge
	repoPath string

	mu       sync.Mutex // guards everything below
	rows     []status.Row
	timedOut int
	canceled int
	warnings []render.Warning
	warnIdx  map[string]int
}

// Run enumerates the repository, schedules a job per fact and feeds every
// settled fact to r. It fails only when the repository cannot be
// enumerated; per-fact failures are reported in the returned summary.
//
// Cancelling ctx stops new jobs from starting; jobs already running finish
// unless opts.Hard is cancelled too. r.Finish is left to the caller.
func Run(ctx context.Context, opts Options, store *facts.Store, r render.Renderer) (render.Summary, error) {
	start := time.Now()
	l := log.FromContext(ctx)

	repo, err := git.OpenRepo(ctx, opts.Dir)
	if err != nil {
		return render.Summary{}, err
	}

	c := &collector{
		opts:     opts,
		repo:     repo,
		store:    store,
		renderer: r,
		warnIdx:  make(map[string]int),
	}

	var (
		inv           *git.Inventory
		defaultBranch string
		branchErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inv, err = git.LoadInventory(gctx, repo, git.LoadOptions{Remotes: opts.Remotes})
		return err
	})
	g.Go(func() error {
		defaultBranch, branchErr = c.defaultBranch(gctx)
		return nil
	})
	if opts.Full {
		g.Go(func() error {
			c.detectForge(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return render.Summary{}, err
	}

	if branchErr != nil {
		c.warn("target", branchErr)
	} else if target, err := git.ResolveTarget(ctx, repo.Dir, defaultBranch); err != nil {
		c.warn("target", err)
	} else {
		c.target, c.hasTarget = target, true
		l.Debug("target resolved", "branch", target.Branch, "ref", target.Ref, "head", target.Head)
	}

	objects := git.NewObjectReader(ctx, repo)
	c.oracle = storeOracle{store: store, next: &classify.GitOracle{Dir: repo.Dir, Objects: objects}}

	rows := skeleton(ctx, repo, inv, c.target.Branch, objects, opts)
	rows = filterRows(rows, opts.Pattern)
	c.rows = rows

	tasks := c.plan()
	l.Debug("collecting", "rows", len(rows), "jobs", len(tasks))

	snapshot := make([]status.Row, len(c.rows))
	copy(snapshot, c.rows)
	r.Start(snapshot)

	jobs := make([]sched.Job, len(tasks))
	for i, t := range tasks {
		jobs[i] = t.job
		jobs[i].ID = i
	}

	var schedOpts []sched.Option
	if opts.Hard != nil {
		schedOpts = append(schedOpts, sched.WithHardContext(opts.Hard))
	}
	s := sched.New(opts.Concurrency, opts.Timeout, schedOpts...)
	s.Run(ctx, jobs, func(job sched.Job, out sched.Outcome) {
		c.settle(tasks[job.ID], out)
	})

	stats := store.Stats()
	l.Debug("collected", "elapsed", time.Since(start).Round(time.Millisecond),
		"hits", stats.Hits, "misses", stats.Misses, "shared", stats.Shared)

	c.mu.Lock()
	defer c.mu.Unlock()
	return render.Summary{
		Rows:     len(c.rows),
		TimedOut: c.timedOut,
		Canceled: c.canceled,
		Warnings: c.warnings,
		Elapsed:  time.Since(start),
	}, nil
}

// defaultBranch is persisted across runs until explicitly cleared.
func (c *collector) defaultBranch(ctx context.Context) (string, error) {
	key := facts.Key{Kind: facts.KindDefaultBranch, Branch: c.repo.CommonDir}
	return facts.GetOrFetch(ctx, c.store, key, facts.NoExpiry, func(ctx context.Context) (string, error) {
		return git.DetectDefaultBranch(ctx, c.repo.Dir)
	})
}

// detectForge picks the CI backend from the origin URL. Without an origin
// no CI facts are requested.
func (c *collector) detectForge(ctx context.Context) {
	url, err := git.GetOriginURL(ctx, c.repo.Dir)
	if err != nil {
		log.FromContext(ctx).Debug("no origin, skipping CI", "err", err)
		return
	}
	c.forge = forge.Detect(url, c.opts.Hosts)
	c.repoPath = forge.RepoPath(url)
}

// settle applies one job outcome and forwards the row if it changed.
func (c *collector) settle(t task, out sched.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := &c.rows[t.row]
	changed := t.apply(row, out)

	switch {
	case out.TimedOut || errors.Is(out.Err, context.DeadlineExceeded):
		c.timedOut++
	case out.Canceled || errors.Is(out.Err, context.Canceled):
		c.canceled++
	case out.Err != nil && !errors.Is(out.Err, errUpstreamGone):
		c.warnLocked(t.name, out.Err)
	}

	if changed {
		c.renderer.Update(t.row, *row)
	}
}

func (c *collector) warn(label string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnLocked(label, err)
}

// warnLocked records err under its innermost cause so the same failure on
// many rows is reported once with a count.
func (c *collector) warnLocked(label string, err error) {
	cause := fmt.Sprintf("%s: %s", label, rootCause(err))
	if i, ok := c.warnIdx[cause]; ok {
		c.warnings[i].Count++
		return
	}
	c.warnIdx[cause] = len(c.warnings)
	c.warnings = append(c.warnings, render.Warning{Cause: cause, Count: 1})
}

// rootCause returns the message of the innermost wrapped error. Wrapping
// layers usually name the row; the root is what rows have in common.
func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
