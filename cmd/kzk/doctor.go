package main

import (
	"github.com/spf13/cobra"

	"github.com/kaizoku-dev/kzk/internal/config"
	"github.com/kaizoku-dev/kzk/internal/doctor"
	"github.com/kaizoku-dev/kzk/internal/output"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify configuration and connectivity issues.

Checks performed:
  - Server connectivity and response time
  - Access token source and acceptance
  - Library readiness (the dashboard stays hidden without one)
  - Activity feed`,
		Example: `  kzk doctor
  kzk doctor --api-url http://kaizoku.lan:3000`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			cfg := config.Load()
			source, apiClient := newAPIClient(cfg)

			results := doctor.New(apiClient, source, nil).Run(cmd.Context())

			renderDoctor(out, results)

			return nil
		},
	}
}

func renderDoctor(out *output.Writer, results []doctor.Result) {
	out.Heading("kzk doctor")
	out.Println()

	doctor.RenderResults(results, out.Print, out.Success, out.Warning, out.Failure, out.Muted)

	out.Println()
	doctor.RenderSummary(results, out.Print)
}
