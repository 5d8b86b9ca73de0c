package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/wts/internal/config"
	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/log"
	"github.com/raphi011/wts/internal/output"
	"github.com/raphi011/wts/internal/ui/styles"
)

// Command group IDs for organizing help output
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

// newRootCmd builds the command tree. Global flags are bound per tree so
// tests can run commands in parallel.
func newRootCmd() *cobra.Command {
	var (
		verbose bool
		quiet   bool
		dir     string
	)

	root := &cobra.Command{
		Use:   "wts",
		Short: "Status of every worktree and branch at a glance",
		Long: `wts shows the status of every worktree and branch of a git repository.

Each row is classified against the default branch (ahead, behind, integrated,
would conflict, ...) and annotated with working tree, remote and CI state.
Slow checks fill in while the table is displayed; a check that exceeds its
time budget is marked ⧖ instead of holding up the rest.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2, // Enable typo suggestions
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			// Logger goes to stderr so it never mixes with table or JSON output
			ctx = log.WithLogger(ctx, log.New(cmd.ErrOrStderr(), verbose, quiet))

			// Skip config and git checks for completion and help commands
			if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
				cmd.SetContext(ctx)
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				cfg = config.Default()
			}
			ctx = config.WithConfig(ctx, &cfg)

			if output.FromContext(ctx).IsTerminal() {
				styles.Init(cfg.Theme)
			}

			cmd.SetContext(ctx)
			return git.CheckGit()
		},
		// Run is not set - shows help when no subcommand provided
	}

	// Global flags
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")
	root.PersistentFlags().StringVarP(&dir, "directory", "C", "", "Run as if started in `dir`")
	root.MarkPersistentFlagDirname("directory")

	// Version flag
	root.Version = versionString()
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	root.AddCommand(newListCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// workDir returns the directory given with -C, or the working directory.
func workDir(cmd *cobra.Command) (string, error) {
	if f := cmd.Flag("directory"); f != nil && f.Value.String() != "" {
		return filepath.Abs(f.Value.String())
	}
	return os.Getwd()
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	// The first interrupt cancels ctx. "wts list" watches for a second one
	// itself to abandon running jobs.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Add output printer (stdout for primary data)
	ctx = output.WithPrinter(ctx, os.Stdout)

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "wts:", err)
		os.Exit(1)
	}
}
