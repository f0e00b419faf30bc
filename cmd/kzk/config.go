package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/kaizoku-dev/kzk/internal/config"
	clierrors "github.com/kaizoku-dev/kzk/internal/errors"
	"github.com/kaizoku-dev/kzk/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify kzk configuration settings.`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long:  `Display all configuration settings and their current values, including defaults.`,
		Example: `  kzk config list
  kzk config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			if out.JSON {
				return out.PrintJSON(cfg.All())
			}

			keys := cfg.Keys()
			sort.Strings(keys)

			for _, key := range keys {
				out.Print("%s = %v\n", key, cfg.Get(key))
			}

			out.Println()
			out.Muted("api.url                     Kaizoku server URL (default: %s)", config.DefaultAPIURL)
			out.Muted("dashboard.poll_interval     Activity and history refresh in seconds (default: %d)", config.DefaultPollInterval)
			out.Muted("dashboard.library_interval  Library readiness check in seconds (default: %d)", config.DefaultLibraryInterval)
			out.Muted("dashboard.width             Sidebar width in cells (default: %d)", config.DefaultSidebarWidth)

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Long:    `Retrieve and display the current value of a single configuration key.`,
		Example: `  kzk config get api.url`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]
			cfg := config.Load()
			value := cfg.Get(key)

			if value == nil {
				out.Muted("%s is not set", key)
				return nil
			}

			out.Print("%s = %v\n", key, value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Set a configuration value",
		Long:    `Set a configuration key to the given value. The value is persisted to the config file.`,
		Example: `  kzk config set api.url http://kaizoku.lan:3000`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key, value := args[0], args[1]
			cfg := config.Load()

			if err := cfg.Set(key, value); err != nil {
				return clierrors.ConfigFailed("set config", err)
			}

			out.Success("Set %s = %s", key, value)

			return nil
		},
	}
}
