package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/wts/internal/cache"
	"github.com/raphi011/wts/internal/collect"
	"github.com/raphi011/wts/internal/config"
	"github.com/raphi011/wts/internal/facts"
	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/log"
	"github.com/raphi011/wts/internal/output"
	"github.com/raphi011/wts/internal/render"
)

// flushTimeout bounds how long the cache write waits for another wts
// process holding the lock.
const flushTimeout = 2 * time.Second

type listFlags struct {
	branches    bool
	remotes     bool
	full        bool
	format      string
	concurrency int
	timeout     time.Duration
	deadline    time.Duration

	progressive   bool
	noProgressive bool
}

func newListCmd() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:     "list [pattern]",
		Short:   "List worktrees and branches with their status",
		Aliases: []string{"ls"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `List worktrees (and optionally branches) with their status.

Each row is compared against the default branch, or its upstream when that
is ahead. The STATUS column shows at most one symbol per category:

  ✘           merge conflicts
  ⊞ ⊟ ⊡ /     locked, prunable, bare, branch without worktree
  ⤴ ⤵         rebase or merge in progress
  ^ ✗ _ – ⊂   target, would conflict, same commit (clean, dirty), integrated
  ↕ ↑ ↓       diverged from, ahead of, behind the target
  ⇅ ⇡ ⇣ |     against the upstream; | is in sync
  + ! ?       staged, modified, untracked changes

Integrated branches (⊂, _) are dimmed: they are safe to delete.
Tables redraw in place on a terminal; --progressive and --no-progressive
override that.
Cells still loading show a spinner; checks that exceed --timeout show ⧖.

Ctrl-C once stops starting new checks and shows what is known; a second
Ctrl-C abandons checks still running.`,
		Example: `  wts list                     # Worktrees of the current repository
  wts ls -b                    # Include branches without a worktree
  wts list -b --remotes        # Include remote-only branches
  wts list --full              # Add CI status and branch diff stats
  wts list feat                # Fuzzy filter by branch name
  wts list --format json       # Machine-readable output
  wts list --timeout 2s        # Give up on slow checks sooner
  wts list --no-progressive    # Print once, after every check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pattern string
			if len(args) > 0 {
				pattern = args[0]
			}
			return runList(cmd, f, pattern)
		},
	}

	cmd.Flags().BoolVarP(&f.branches, "branches", "b", false, "Include branches without a worktree")
	cmd.Flags().BoolVar(&f.remotes, "remotes", false, "Include remote branches without a local branch")
	cmd.Flags().BoolVar(&f.full, "full", false, "Include CI status and branch diff stats")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: table, json")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "j", 0, "Maximum checks in flight")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Time budget per check (0 disables)")
	cmd.Flags().DurationVar(&f.deadline, "deadline", 0, "Stop starting checks after this long (0 disables)")
	cmd.Flags().BoolVar(&f.progressive, "progressive", false, "Redraw the table as checks finish, even when not on a terminal")
	cmd.Flags().BoolVar(&f.noProgressive, "no-progressive", false, "Print the table once when every check is done")
	cmd.MarkFlagsMutuallyExclusive("progressive", "no-progressive")

	cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.ValidFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// listSettings merges config and flags. Flags win when set explicitly.
func listSettings(cmd *cobra.Command, cfg *config.Config, f listFlags) (config.ListConfig, error) {
	s := cfg.List
	flags := cmd.Flags()
	if flags.Changed("branches") {
		s.Branches = f.branches
	}
	if flags.Changed("remotes") {
		s.Remotes = f.remotes
	}
	if flags.Changed("full") {
		s.Full = f.full
	}
	if flags.Changed("format") {
		s.Format = f.format
	}
	if flags.Changed("concurrency") {
		s.Concurrency = f.concurrency
	}
	if flags.Changed("timeout") {
		s.Timeout = config.Duration(f.timeout)
	}
	if flags.Changed("deadline") {
		s.Deadline = config.Duration(f.deadline)
	}

	if err := s.Validate(config.FlagName); err != nil {
		return s, err
	}
	// --remotes lists branches, so it implies them.
	if s.Remotes {
		s.Branches = true
	}
	return s, nil
}

// progressive reports whether the table redraws in place. Without either
// flag it does so on a terminal.
func progressive(cmd *cobra.Command, f listFlags, tty bool) bool {
	flags := cmd.Flags()
	switch {
	case flags.Changed("progressive"):
		return f.progressive
	case flags.Changed("no-progressive"):
		return !f.noProgressive
	}
	return tty
}

func runList(cmd *cobra.Command, f listFlags, pattern string) error {
	ctx := cmd.Context()
	l := log.FromContext(ctx)
	out := output.FromContext(ctx)

	cfg := config.FromContext(ctx)
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	dir, err := workDir(cmd)
	if err != nil {
		return err
	}
	repo, err := git.OpenRepo(ctx, dir)
	if err != nil {
		return err
	}

	if repo.Toplevel != "" {
		local, err := config.LoadLocal(repo.Toplevel)
		if err != nil {
			return err
		}
		cfg = config.MergeLocal(cfg, local)
	}

	settings, err := listSettings(cmd, cfg, f)
	if err != nil {
		return err
	}

	soft, hard, stop := interruptContexts(ctx, settings.Deadline.Std())
	defer stop()

	store, file := openStore(ctx, repo,
		facts.WithHardContext(hard),
		facts.WithFetchTimeout(settings.Timeout.Std()),
	)

	renderer := render.Select(render.Format(settings.Format), progressive(cmd, f, out.IsTerminal()), render.Options{
		Out:  out.Writer(),
		Err:  cmd.ErrOrStderr(),
		Full: settings.Full,
	})

	summary, err := collect.Run(soft, collect.Options{
		Dir:            dir,
		Branches:       settings.Branches,
		Remotes:        settings.Remotes,
		Full:           settings.Full,
		Pattern:        pattern,
		Concurrency:    settings.Concurrency,
		Timeout:        settings.Timeout.Std(),
		StaleThreshold: settings.StaleThreshold,
		CITTL:          cfg.CI.TTL.Std(),
		Hosts:          cfg.Hosts,
		Hard:           hard,
	}, store, renderer)
	if err != nil {
		return err
	}

	if err := renderer.Finish(summary); err != nil {
		return err
	}

	if file != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := file.Flush(flushCtx); err != nil {
			l.Debug("cache not saved", "path", file.Path(), "err", err)
		}
	}

	// An interrupt (not the deadline) still ends with an error status.
	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.New("interrupted")
	}
	return nil
}

// openStore backs the fact store with the repository's cache file. A
// cache that cannot be read only costs refetching.
func openStore(ctx context.Context, repo *git.Repo, opts ...facts.Option) (*facts.Store, *cache.File) {
	l := log.FromContext(ctx)
	path, err := cache.PathFor(repo.CommonDir)
	if err != nil {
		l.Debug("cache disabled", "err", err)
		return facts.NewStore(opts...), nil
	}
	file, err := cache.Open(path)
	if err != nil {
		l.Debug("cache disabled", "path", path, "err", err)
		return facts.NewStore(opts...), nil
	}
	return facts.NewStore(append(opts, facts.WithBacking(file))...), file
}

// interruptContexts derives the two cancellation levels of a listing.
// soft ends at the first interrupt or the deadline and stops new checks;
// hard ends at a second interrupt and abandons running ones.
func interruptContexts(ctx context.Context, deadline time.Duration) (soft, hard context.Context, stop func()) {
	var cancelSoft context.CancelFunc
	if deadline > 0 {
		soft, cancelSoft = context.WithTimeout(ctx, deadline)
	} else {
		soft, cancelSoft = context.WithCancel(ctx)
	}
	hard, kill := context.WithCancel(context.WithoutCancel(ctx))

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		n := 0
		for {
			select {
			case <-sigs:
				n++
				cancelSoft()
				if n >= 2 {
					kill()
					return
				}
			case <-hard.Done():
				return
			}
		}
	}()

	return soft, hard, func() {
		signal.Stop(sigs)
		kill()
		cancelSoft()
	}
}
