package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kaizoku-dev/kzk/internal/config"
	"github.com/kaizoku-dev/kzk/internal/dashboard"
	clierrors "github.com/kaizoku-dev/kzk/internal/errors"
	"github.com/kaizoku-dev/kzk/internal/observability"
	"github.com/kaizoku-dev/kzk/internal/output"
)

// dashboardSettings is the resolved polling and layout configuration.
type dashboardSettings struct {
	PollInterval    time.Duration
	LibraryInterval time.Duration
	Width           int
}

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the live activity sidebar",
		Long: `Open a live sidebar with job counts per queue state and the latest
downloaded chapters. Counts and downloads refresh on their own, and the
"time ago" labels keep ticking between refreshes.

The sidebar stays empty until the server reports a configured library.
Press Enter on a job row to open that queue in your browser.`,
		Example: `  kzk dashboard
  kzk dashboard --interval 10s --width 44`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			term := out.Terminal()
			if !term.IsTTY || !term.StdinIsTTY {
				return clierrors.NotInteractive(cmd.CommandPath())
			}

			cfg := config.Load()

			settings, err := resolveDashboardSettings(cfg, cmd.Flags())
			if err != nil {
				return err
			}

			return runDashboard(cmd.Context(), cfg, settings)
		},
	}

	cmd.Flags().Duration("interval", 0, "Activity and history refresh interval (default from dashboard.poll_interval)")
	cmd.Flags().Duration("library-interval", 0, "Library readiness check interval (default from dashboard.library_interval)")
	cmd.Flags().Int("width", 0, "Sidebar width in cells (default from dashboard.width)")

	return cmd
}

// resolveDashboardSettings layers explicitly set flags over the config.
func resolveDashboardSettings(cfg *config.Config, flags *pflag.FlagSet) (dashboardSettings, error) {
	settings := dashboardSettings{
		PollInterval:    cfg.PollInterval(),
		LibraryInterval: cfg.LibraryInterval(),
		Width:           cfg.SidebarWidth(),
	}

	for name, target := range map[string]*time.Duration{
		"interval":         &settings.PollInterval,
		"library-interval": &settings.LibraryInterval,
	} {
		if !flags.Changed(name) {
			continue
		}

		value, err := flags.GetDuration(name)
		if err != nil {
			return settings, fmt.Errorf("read --%s: %w", name, err)
		}

		if value <= 0 {
			return settings, clierrors.InvalidInterval(name, value.String())
		}

		*target = value
	}

	if flags.Changed("width") {
		width, err := flags.GetInt("width")
		if err != nil {
			return settings, fmt.Errorf("read --width: %w", err)
		}

		if width <= 0 {
			return settings, &clierrors.CLIError{
				Message: fmt.Sprintf("Invalid value for --width: %d", width),
				Hint:    "Use a positive number of cells",
				Code:    clierrors.ExitUsage,
			}
		}

		settings.Width = width
	}

	return settings, nil
}

func runDashboard(ctx context.Context, cfg *config.Config, settings dashboardSettings) error {
	logger := observability.FromContext(ctx)
	source, apiClient := newAPIClient(cfg)

	logger.Info("starting dashboard",
		slog.String("event.type", "dashboard.run"),
		slog.String("api.url", apiClient.BaseURL()),
		slog.String("auth.source", sourceLabel(source)),
	)

	panel := dashboard.New(dashboard.Options{
		Fetcher:         apiClient,
		Logger:          logger,
		Opener:          dashboard.NewBrowserOpener(),
		PollInterval:    settings.PollInterval,
		LibraryInterval: settings.LibraryInterval,
		Width:           settings.Width,
	})

	program := tea.NewProgram(panel, tea.WithAltScreen(), tea.WithContext(ctx))

	_, runErr := program.Run()
	closeErr := panel.Close()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", runErr)
	}

	if closeErr != nil {
		return fmt.Errorf("stop dashboard: %w", closeErr)
	}

	return nil
}
