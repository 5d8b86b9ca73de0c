package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/wts/internal/config"
	"github.com/raphi011/wts/internal/git"
	"github.com/raphi011/wts/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Show the effective configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Print the effective configuration as TOML.

Global config: ~/.config/wts/config.toml (override with WTS_CONFIG)
Local config:  .wts.toml in the worktree root, overriding [list] and [ci]

Command-line flags of "wts list" override both.`,
		Example: `  wts config           # Show effective config
  wts config init      # Create a commented default config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			if cfg == nil {
				def := config.Default()
				cfg = &def
			}
			if dir, err := workDir(cmd); err == nil {
				if repo, err := git.OpenRepo(ctx, dir); err == nil && repo.Toplevel != "" {
					local, err := config.LoadLocal(repo.Toplevel)
					if err != nil {
						return err
					}
					cfg = config.MergeLocal(cfg, local)
				}
			}
			return config.Encode(output.FromContext(ctx).Writer(), *cfg)
		},
	}

	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  wts config init      # Create global config
  wts config init -f   # Overwrite existing config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(force)
			if err != nil {
				return err
			}
			output.FromContext(cmd.Context()).Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")

	return cmd
}
