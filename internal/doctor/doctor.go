// Package doctor provides diagnostic checks for kzk and the Kaizoku server.
//
// This package implements a check framework that validates:
//   - Server connectivity and response time
//   - Access token source and acceptance
//   - Library readiness (the dashboard gate)
//   - The activity feed the dashboard polls
package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/kaizoku-dev/kzk/internal/auth"
	"github.com/kaizoku-dev/kzk/internal/buildinfo"
	"github.com/kaizoku-dev/kzk/internal/client"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Server is the part of the API client the checks use.
type Server interface {
	BaseURL() string
	HasToken() bool
	Library(ctx context.Context) (*client.Library, error)
	Activity(ctx context.Context) (*client.ActivitySummary, error)
}

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a runner with the default checks against server. source is
// where the token came from.
func New(server Server, source auth.Source, clock clockwork.Clock) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	r := &Runner{}

	r.AddCheck("Server", connectivityCheck(server, clock))
	r.AddCheck("Authentication", authCheck(server, source))
	r.AddCheck("Library", libraryCheck(server))
	r.AddCheck("Activity Feed", activityCheck(server))
	r.AddCheck("CLI Version", checkCLIVersion)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

// responded reports whether err came back from the server rather than the
// network.
func responded(err error) bool {
	var rpcErr *client.RPCError

	var statusErr *client.StatusError

	return errors.As(err, &rpcErr) || errors.As(err, &statusErr)
}

func connectivityCheck(server Server, clock clockwork.Clock) Check {
	return func(ctx context.Context) Result {
		start := clock.Now()
		_, err := server.Library(ctx)
		elapsed := clock.Since(start)

		// Any answer from the server, even an error, proves it is reachable.
		if err != nil && !responded(err) {
			return Result{
				Status:  StatusFail,
				Message: server.BaseURL(),
				Detail:  err.Error(),
			}
		}

		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s (%dms)", server.BaseURL(), elapsed.Milliseconds()),
		}
	}
}

func authCheck(server Server, source auth.Source) Check {
	return func(ctx context.Context) Result {
		_, err := server.Library(ctx)
		unauthorized := client.IsUnauthorized(err)

		switch {
		case !server.HasToken() && unauthorized:
			return Result{
				Status:  StatusFail,
				Message: "Server requires a token",
				Detail:  "Run 'kzk auth login' to store one",
			}
		case !server.HasToken():
			return Result{
				Status:  StatusPass,
				Message: "No token (server allows anonymous access)",
			}
		case unauthorized:
			return Result{
				Status:  StatusFail,
				Message: fmt.Sprintf("Token rejected (via %s)", source),
				Detail:  err.Error(),
			}
		}

		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("Token accepted (via %s)", source),
		}
	}
}

func libraryCheck(server Server) Check {
	return func(ctx context.Context) Result {
		lib, err := server.Library(ctx)
		if err != nil {
			return Result{
				Status:  StatusFail,
				Message: "Could not query library",
				Detail:  err.Error(),
			}
		}

		if lib == nil {
			return Result{
				Status:  StatusWarn,
				Message: "Not set up (dashboard stays hidden)",
				Detail:  fmt.Sprintf("Finish the library setup at %s", server.BaseURL()),
			}
		}

		return Result{
			Status:  StatusPass,
			Message: lib.Path,
		}
	}
}

func activityCheck(server Server) Check {
	return func(ctx context.Context) Result {
		summary, err := server.Activity(ctx)
		if err != nil {
			return Result{
				Status:  StatusFail,
				Message: "Activity summary unavailable",
				Detail:  err.Error(),
			}
		}

		if summary == nil {
			return Result{
				Status:  StatusFail,
				Message: "Activity summary unavailable",
				Detail:  "activity feed returned no record",
			}
		}

		result := Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("%d active, %d queued, %d failed", summary.Active, summary.Queued, summary.Failed),
		}

		if summary.Failed > 0 {
			result.Status = StatusWarn
			result.Detail = "Open the Failed row in 'kzk dashboard' to inspect failed jobs"
		}

		return result
	}
}

func checkCLIVersion(context.Context) Result {
	if buildinfo.Version == "dev" {
		return Result{
			Status:  StatusWarn,
			Message: "Development build",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: "v" + buildinfo.Version,
	}
}

// RenderResults formats diagnostic results to the given output writer.
func RenderResults(results []Result, printFn, successFn, warningFn, failureFn, mutedFn func(format string, args ...any)) {
	maxNameLen := 0
	for _, r := range results {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	for _, r := range results {
		width := maxNameLen + 4

		switch r.Status {
		case StatusPass:
			successFn("%-*s%s", width, r.Name, r.Message)
		case StatusWarn:
			warningFn("%-*s%s", width, r.Name, r.Message)
		case StatusFail:
			failureFn("%-*s%s", width, r.Name, r.Message)
		default:
			printFn("%s %-*s%s\n", r.Status.Symbol(), width, r.Name, r.Message)
		}

		if r.Detail != "" {
			mutedFn("    %s", r.Detail)
		}
	}
}

// RenderSummary writes the "N passed, N failed" line.
func RenderSummary(results []Result, printFn func(format string, args ...any)) {
	passed, failed, warnings := Summary(results)

	printFn("%d passed", passed)

	if failed > 0 {
		printFn(", %d failed", failed)
	}

	if warnings > 0 {
		printFn(", %d warning(s)", warnings)
	}

	printFn("\n")
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "\u2713" // ✓
	xMark       = "\u2717" // ✗
	warningMark = "\u26A0" // ⚠
)
