package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kaizoku-dev/kzk/internal/client"
	"github.com/kaizoku-dev/kzk/internal/config"
	"github.com/kaizoku-dev/kzk/internal/dashboard"
	clierrors "github.com/kaizoku-dev/kzk/internal/errors"
	"github.com/kaizoku-dev/kzk/internal/output"
	"github.com/kaizoku-dev/kzk/internal/tui/render"
)

// StatusReport is one snapshot of the server, as printed by 'kzk status'.
type StatusReport struct {
	Server   string                  `json:"server" yaml:"server"`
	Ready    bool                    `json:"ready" yaml:"ready"`
	Library  *client.Library         `json:"library,omitempty" yaml:"library,omitempty"`
	Activity *client.ActivitySummary `json:"activity,omitempty" yaml:"activity,omitempty"`
	History  []StatusDownload        `json:"history" yaml:"history"`
}

// StatusDownload is a history entry in a StatusReport.
type StatusDownload struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Chapter      int       `json:"chapter" yaml:"chapter"`
	File         string    `json:"file" yaml:"file"`
	Size         int64     `json:"size" yaml:"size"`
	Cover        string    `json:"cover,omitempty" yaml:"cover,omitempty"`
	DownloadedAt time.Time `json:"downloadedAt" yaml:"downloadedAt"`
}

type statusSource interface {
	BaseURL() string
	Library(ctx context.Context) (*client.Library, error)
	Activity(ctx context.Context) (*client.ActivitySummary, error)
	History(ctx context.Context) ([]client.HistoryEntry, error)
	QueueURL(queue, status string) string
	CoverURL(cover string) string
}

func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print a one-shot activity snapshot",
		Long: `Fetch the library, activity counts and latest downloads once and print
them. Use --json or --output yaml for scripting.`,
		Example: `  kzk status
  kzk status --json
  kzk status --output yaml`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if out.JSON && format == "" {
				format = "json"
			}

			cfg := config.Load()
			_, apiClient := newAPIClient(cfg)

			var spin *output.Spinner
			if format == "" {
				spin = out.Spinner("Fetching activity")
				spin.Start()
			}

			report, err := fetchStatus(cmd.Context(), apiClient)

			if spin != nil {
				switch {
				case err != nil:
					spin.StopWithFailure("")
				case !report.Ready:
					spin.StopWithWarning("")
				default:
					spin.StopWithSuccess("")
				}
			}

			if err != nil {
				if client.IsUnauthorized(err) {
					return clierrors.AuthFailed(err)
				}

				return clierrors.APIUnreachable(apiClient.BaseURL(), err)
			}

			if format != "" {
				if err := out.PrintStructured(format, report); err != nil {
					return clierrors.New(clierrors.ExitUsage, err.Error()).
						WithHint("Use --output json or --output yaml")
				}

				return nil
			}

			if !report.Ready {
				return clierrors.LibraryNotReady(report.Server)
			}

			renderStatus(out, report, apiClient.QueueURL, time.Now())

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "", "Structured output format: json, yaml")

	return cmd
}

// fetchStatus queries the three feeds concurrently.
func fetchStatus(ctx context.Context, src statusSource) (*StatusReport, error) {
	report := &StatusReport{Server: src.BaseURL(), History: []StatusDownload{}}

	var entries []client.HistoryEntry

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lib, err := src.Library(gctx)
		if err != nil {
			return fmt.Errorf("query library: %w", err)
		}

		report.Library = lib

		return nil
	})
	g.Go(func() error {
		summary, err := src.Activity(gctx)
		if err != nil {
			return fmt.Errorf("query activity: %w", err)
		}

		report.Activity = summary

		return nil
	})
	g.Go(func() error {
		history, err := src.History(gctx)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}

		entries = history

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Ready = report.Library != nil

	for _, e := range entries {
		report.History = append(report.History, StatusDownload{
			ID:           e.ID,
			Title:        e.Manga.Title,
			Chapter:      e.Chapter.Index + 1,
			File:         e.FileName,
			Size:         e.Size,
			Cover:        src.CoverURL(e.Manga.Metadata.Cover),
			DownloadedAt: e.CreatedAt,
		})
	}

	return report, nil
}

// renderStatus prints the plain sidebar rendition of report.
func renderStatus(out *output.Writer, report *StatusReport, resolve func(queue, status string) string, now time.Time) {
	out.Heading("Activities")

	if report.Activity != nil {
		for _, row := range dashboard.ActivityRows(*report.Activity, resolve, nil) {
			out.Print("%s %s %d\n", row.Icon, render.PadRightVisible(row.Label, 14), row.Count)

			if row.Target != "" {
				out.Muted("  %s", row.Target)
			}
		}
	}

	out.Println()
	out.Heading("Latest Downloads")

	if len(report.History) == 0 {
		out.Muted("No downloads yet")
		return
	}

	for i, d := range report.History {
		if i > 0 {
			out.Println()
		}

		out.Print("%s  %s\n", dashboard.TruncateTitle(d.Title), dashboard.ChapterBadge(d.Chapter-1))
		out.Print("  %s\n", strings.TrimSpace(dashboard.DownloadedAs(d.File)))
		out.Print("  %s  %s\n", dashboard.RelativeTime(d.DownloadedAt, now), dashboard.FormatSize(d.Size))
	}
}
