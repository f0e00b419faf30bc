package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/kaizoku-dev/kzk/internal/auth"
	"github.com/kaizoku-dev/kzk/internal/client"
)

type fakeServer struct {
	token       bool
	library     *client.Library
	libraryErr  error
	activity    *client.ActivitySummary
	activityErr error
}

func (f *fakeServer) BaseURL() string { return "http://kaizoku.local" }
func (f *fakeServer) HasToken() bool  { return f.token }

func (f *fakeServer) Library(context.Context) (*client.Library, error) {
	return f.library, f.libraryErr
}

func (f *fakeServer) Activity(context.Context) (*client.ActivitySummary, error) {
	return f.activity, f.activityErr
}

func runChecks(t *testing.T, server *fakeServer, source auth.Source) map[string]Result {
	t.Helper()

	results := New(server, source, clockwork.NewFakeClock()).Run(context.Background())

	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}

	return byName
}

func TestRunner_HealthyServer(t *testing.T) {
	server := &fakeServer{
		token:    true,
		library:  &client.Library{ID: "1", Path: "/data/manga"},
		activity: &client.ActivitySummary{Active: 2, Queued: 5},
	}

	results := runChecks(t, server, auth.SourceKeyring)

	want := map[string]string{
		"Server":         "http://kaizoku.local (0ms)",
		"Authentication": "Token accepted (via keyring)",
		"Library":        "/data/manga",
		"Activity Feed":  "2 active, 5 queued, 0 failed",
	}

	for name, msg := range want {
		got := results[name]
		if got.Status != StatusPass || got.Message != msg {
			t.Errorf("%s = %+v, want pass %q", name, got, msg)
		}
	}
}

func TestRunner_OrderIsStable(t *testing.T) {
	results := New(&fakeServer{}, auth.SourceNone, nil).Run(context.Background())

	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}

	if got := strings.Join(names, ","); got != "Server,Authentication,Library,Activity Feed,CLI Version" {
		t.Errorf("check order = %s", got)
	}
}

func TestConnectivity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{name: "ok", want: StatusPass},
		{name: "rpc error still reachable", err: &client.RPCError{Procedure: "library.query", HTTPStatus: 500}, want: StatusPass},
		{name: "status error still reachable", err: &client.StatusError{Procedure: "library.query", StatusCode: 502}, want: StatusPass},
		{name: "network error", err: errors.New("dial tcp: connection refused"), want: StatusFail},
		{name: "wrapped network error", err: fmt.Errorf("library.query: %w", errors.New("timeout")), want: StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runChecks(t, &fakeServer{libraryErr: tt.err}, auth.SourceNone)["Server"]
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%+v)", got.Status, tt.want, got)
			}
		})
	}
}

func TestAuthentication(t *testing.T) {
	unauthorized := &client.RPCError{Procedure: "library.query", Code: "UNAUTHORIZED", HTTPStatus: 401}

	tests := []struct {
		name    string
		token   bool
		err     error
		want    Status
		message string
	}{
		{name: "anonymous allowed", want: StatusPass, message: "No token (server allows anonymous access)"},
		{name: "anonymous rejected", err: unauthorized, want: StatusFail, message: "Server requires a token"},
		{name: "token rejected", token: true, err: unauthorized, want: StatusFail, message: "Token rejected (via environment variable)"},
		{name: "token accepted", token: true, want: StatusPass, message: "Token accepted (via environment variable)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &fakeServer{token: tt.token, libraryErr: tt.err}

			got := runChecks(t, server, auth.SourceEnv)["Authentication"]
			if got.Status != tt.want || got.Message != tt.message {
				t.Errorf("got %+v, want %v %q", got, tt.want, tt.message)
			}
		})
	}
}

func TestLibrary_NotSetUpWarns(t *testing.T) {
	got := runChecks(t, &fakeServer{}, auth.SourceNone)["Library"]

	if got.Status != StatusWarn {
		t.Fatalf("Status = %v, want warn", got.Status)
	}

	if !strings.Contains(got.Detail, "http://kaizoku.local") {
		t.Errorf("Detail = %q, want server URL", got.Detail)
	}
}

func TestActivity(t *testing.T) {
	failed := runChecks(t, &fakeServer{activity: &client.ActivitySummary{Failed: 3}}, auth.SourceNone)["Activity Feed"]
	if failed.Status != StatusWarn || failed.Message != "0 active, 0 queued, 3 failed" {
		t.Errorf("failed jobs = %+v, want warning", failed)
	}

	broken := runChecks(t, &fakeServer{activityErr: errors.New("activity record missing active")}, auth.SourceNone)["Activity Feed"]
	if broken.Status != StatusFail || broken.Detail != "activity record missing active" {
		t.Errorf("broken feed = %+v, want failure with detail", broken)
	}

	empty := runChecks(t, &fakeServer{}, auth.SourceNone)["Activity Feed"]
	if empty.Status != StatusFail || empty.Detail != "activity feed returned no record" {
		t.Errorf("missing record = %+v, want failure", empty)
	}
}

func TestSummary(t *testing.T) {
	passed, failed, warnings := Summary([]Result{
		{Status: StatusPass}, {Status: StatusPass}, {Status: StatusFail}, {Status: StatusWarn},
	})

	if passed != 2 || failed != 1 || warnings != 1 {
		t.Errorf("Summary() = %d, %d, %d; want 2, 1, 1", passed, failed, warnings)
	}
}

func TestRenderResults(t *testing.T) {
	var b strings.Builder

	line := func(prefix string) func(string, ...any) {
		return func(format string, args ...any) {
			b.WriteString(prefix + fmt.Sprintf(format, args...) + "\n")
		}
	}

	RenderResults([]Result{
		{Name: "Server", Status: StatusPass, Message: "up"},
		{Name: "Activity Feed", Status: StatusFail, Message: "down", Detail: "boom"},
	}, line("print "), line("ok "), line("warn "), line("fail "), line("muted "))

	want := "ok Server           up\n" +
		"fail Activity Feed    down\n" +
		"muted     boom\n"

	if b.String() != want {
		t.Errorf("RenderResults() =\n%q\nwant\n%q", b.String(), want)
	}
}

func TestStatusSymbol(t *testing.T) {
	tests := map[Status]string{
		StatusPass: "✓",
		StatusWarn: "⚠",
		StatusFail: "✗",
		Status(9):  "?",
	}

	for status, want := range tests {
		if got := status.Symbol(); got != want {
			t.Errorf("Status(%d).Symbol() = %q, want %q", status, got, want)
		}
	}
}
