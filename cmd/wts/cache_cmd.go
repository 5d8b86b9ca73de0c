package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/wts/internal/cache"
	"github.com/raphi011/wts/internal/facts"
	"github.com/raphi011/wts/internal/format"
	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/output"
	"github.com/raphi011/wts/internal/ui/static"
)

// cacheKinds are the fact kinds kept between runs.
var cacheKinds = []string{string(facts.KindCI), string(facts.KindDefaultBranch)}

// valueWidth caps the VALUE column of "wts cache show".
const valueWidth = 60

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Short:   "Inspect or clear cached facts",
		GroupID: GroupConfig,
		Long: `Inspect or clear the facts kept between runs.

CI results are cached for [ci] ttl. The detected default branch is kept
until cleared, so run "wts cache clear --kind default-branch" after the
default branch of a repository changes.`,
	}

	cmd.AddCommand(newCacheShowCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Short:   "List cached facts of the current repository",
		Args:    cobra.NoArgs,
		Example: `  wts cache show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			file, err := openCacheFile(cmd)
			if err != nil {
				return err
			}

			records := file.Entries()
			if len(records) == 0 {
				out.Println("No cached facts")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.Key,
					format.RelativeTime(r.FetchedAt),
					format.Truncate(string(r.Value), valueWidth),
				})
			}
			out.Printf("%s", static.RenderTable([]string{"KEY", "FETCHED", "VALUE"}, rows))
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached facts of the current repository",
		Args:  cobra.NoArgs,
		Example: `  wts cache clear                      # Remove everything
  wts cache clear --kind ci            # Refetch CI status on the next run
  wts cache clear --kind default-branch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			prefix := ""
			if kind != "" {
				if !slices.Contains(cacheKinds, kind) {
					return fmt.Errorf("invalid --kind %q (valid: %s)", kind, strings.Join(cacheKinds, ", "))
				}
				prefix = kind + ":"
			}

			file, err := openCacheFile(cmd)
			if err != nil {
				return err
			}
			n := file.Delete(prefix)
			if err := file.Flush(ctx); err != nil {
				return fmt.Errorf("failed to write cache: %w", err)
			}
			out.Printf("Removed %d cached %s\n", n, plural(n, "fact", "facts"))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only remove facts of this kind: "+strings.Join(cacheKinds, ", "))
	cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return cacheKinds, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// openCacheFile opens the cache of the repository containing the working directory.
func openCacheFile(cmd *cobra.Command) (*cache.File, error) {
	ctx := cmd.Context()
	dir, err := workDir(cmd)
	if err != nil {
		return nil, err
	}
	repo, err := git.OpenRepo(ctx, dir)
	if err != nil {
		return nil, err
	}
	path, err := cache.PathFor(repo.CommonDir)
	if err != nil {
		return nil, err
	}
	return cache.Open(path)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
