package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, routes map[string]func(http.ResponseWriter, *http.Request)) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for path, handler := range routes {
		mux.HandleFunc(path, handler)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func reply(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_Activity(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    ActivitySummary
		wantErr string
	}{
		{
			name:   "plain envelope",
			status: http.StatusOK,
			body:   `{"result":{"data":{"active":2,"queued":5,"scheduled":0,"failed":1,"completed":40,"outOfSync":0}}}`,
			want:   ActivitySummary{Active: 2, Queued: 5, Failed: 1, Completed: 40},
		},
		{
			name:   "superjson envelope",
			status: http.StatusOK,
			body:   `{"result":{"data":{"json":{"active":1,"queued":0,"scheduled":3,"failed":0,"completed":7,"outOfSync":2}}}}`,
			want:   ActivitySummary{Active: 1, Scheduled: 3, Completed: 7, OutOfSync: 2},
		},
		{
			name:    "missing field",
			status:  http.StatusOK,
			body:    `{"result":{"data":{"active":1,"queued":0,"scheduled":3,"failed":0,"completed":7}}}`,
			wantErr: "missing outOfSync",
		},
		{
			name:    "negative field",
			status:  http.StatusOK,
			body:    `{"result":{"data":{"active":-1,"queued":0,"scheduled":3,"failed":0,"completed":7,"outOfSync":0}}}`,
			wantErr: "negative active",
		},
		{
			name:    "trpc error",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"json":{"message":"redis down","data":{"code":"INTERNAL_SERVER_ERROR","httpStatus":500}}}}`,
			wantErr: "manga.activity failed with status 500 (INTERNAL_SERVER_ERROR): redis down",
		},
		{
			name:    "non-json failure",
			status:  http.StatusBadGateway,
			body:    "bad gateway",
			wantErr: "manga.activity failed with status 502: bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
				"/api/trpc/manga.activity": reply(tt.status, tt.body),
			})

			got, err := New(srv.URL, "").Activity(context.Background())
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Activity() error = %v, want containing %q", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Activity() error = %v", err)
			}

			if *got != tt.want {
				t.Errorf("Activity() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestClient_History(t *testing.T) {
	body := `{"result":{"data":[
		{"id":"a","createdAt":"2024-05-01T10:00:00Z","fileName":"ch1.cbz","size":1536000,
		 "chapter":{"index":0},"manga":{"title":"Foo","metadata":{"cover":"https://img/foo.jpg"}}},
		{"id":17,"createdAt":"2024-05-01T09:00:00Z","fileName":"ch9.cbz","size":10,
		 "chapter":{"index":8},"manga":{"title":"Bar","metadata":{"cover":""}}}
	]}}`

	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/trpc/manga.history": reply(http.StatusOK, body),
	})

	entries, err := New(srv.URL, "").History(context.Background())
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("History() returned %d entries, want 2", len(entries))
	}

	first := entries[0]
	if first.ID != "a" || first.FileName != "ch1.cbz" || first.Size != 1536000 || first.Chapter.Index != 0 {
		t.Errorf("first entry = %+v", first)
	}

	if first.Manga.Title != "Foo" || first.Manga.Metadata.Cover != "https://img/foo.jpg" {
		t.Errorf("first entry manga = %+v", first.Manga)
	}

	if want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC); !first.CreatedAt.Equal(want) {
		t.Errorf("first entry createdAt = %v, want %v", first.CreatedAt, want)
	}

	if entries[1].ID != "17" {
		t.Errorf("numeric id decoded as %q, want %q", entries[1].ID, "17")
	}
}

func TestClient_HistoryNullIsEmpty(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/trpc/manga.history": reply(http.StatusOK, `{"result":{"data":null}}`),
	})

	entries, err := New(srv.URL, "").History(context.Background())
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}

	if entries == nil || len(entries) != 0 {
		t.Errorf("History() = %#v, want empty non-nil slice", entries)
	}
}

func TestClient_Library(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
		wantID  string
	}{
		{name: "null gate", body: `{"result":{"data":null}}`, wantNil: true},
		{name: "superjson null", body: `{"result":{"data":{"json":null}}}`, wantNil: true},
		{name: "present", body: `{"result":{"data":{"id":1,"path":"/data/manga"}}}`, wantID: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
				"/api/trpc/library.query": reply(http.StatusOK, tt.body),
			})

			lib, err := New(srv.URL, "").Library(context.Background())
			if err != nil {
				t.Fatalf("Library() error = %v", err)
			}

			if tt.wantNil {
				if lib != nil {
					t.Errorf("Library() = %+v, want nil", lib)
				}

				return
			}

			if lib == nil || lib.ID != tt.wantID {
				t.Errorf("Library() = %+v, want id %q", lib, tt.wantID)
			}
		})
	}
}

func TestClient_SendsHeaders(t *testing.T) {
	var gotAuth, gotAgent string

	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/trpc/library.query": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotAgent = r.Header.Get("User-Agent")
			reply(http.StatusOK, `{"result":{"data":null}}`)(w, r)
		},
	})

	if _, err := New(srv.URL+"/", "tok-1").Library(context.Background()); err != nil {
		t.Fatalf("Library() error = %v", err)
	}

	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-1")
	}

	if !strings.HasPrefix(gotAgent, "kzk/") {
		t.Errorf("User-Agent = %q, want kzk/ prefix", gotAgent)
	}
}

func TestClient_NoTokenNoAuthHeader(t *testing.T) {
	var sawAuth bool

	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/trpc/library.query": func(w http.ResponseWriter, r *http.Request) {
			_, sawAuth = r.Header["Authorization"]
			reply(http.StatusOK, `{"result":{"data":null}}`)(w, r)
		},
	})

	c := New(srv.URL, "")
	if c.HasToken() {
		t.Error("HasToken() = true for empty token")
	}

	if _, err := c.Library(context.Background()); err != nil {
		t.Fatal(err)
	}

	if sawAuth {
		t.Error("Authorization header sent without a token")
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "rpc 401", err: &RPCError{HTTPStatus: 401}, want: true},
		{name: "rpc code", err: &RPCError{HTTPStatus: 500, Code: "FORBIDDEN"}, want: true},
		{name: "status 403", err: &StatusError{StatusCode: 403}, want: true},
		{name: "wrapped", err: errors.Join(errors.New("ctx"), &StatusError{StatusCode: 401}), want: true},
		{name: "server error", err: &StatusError{StatusCode: 500}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnauthorized(tt.err); got != tt.want {
				t.Errorf("IsUnauthorized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_QueueURL(t *testing.T) {
	c := New("http://kaizoku.local:3000/", "")

	tests := []struct {
		queue, status, want string
	}{
		{"downloadQueue", "failed", "http://kaizoku.local:3000/bull/queues/queue/downloadQueue?status=failed"},
		{"checkChaptersQueue", "delayed", "http://kaizoku.local:3000/bull/queues/queue/checkChaptersQueue?status=delayed"},
		{"downloadQueue", "", "http://kaizoku.local:3000/bull/queues/queue/downloadQueue"},
	}

	for _, tt := range tests {
		if got := c.QueueURL(tt.queue, tt.status); got != tt.want {
			t.Errorf("QueueURL(%q, %q) = %q, want %q", tt.queue, tt.status, got, tt.want)
		}
	}
}

func TestClient_CoverURL(t *testing.T) {
	c := New("http://kaizoku.local:3000/", "")

	tests := []struct {
		cover, want string
	}{
		{"/covers/foo.jpg", "http://kaizoku.local:3000/covers/foo.jpg"},
		{"covers/foo.jpg", "http://kaizoku.local:3000/covers/foo.jpg"},
		{"https://cdn.example.com/foo.jpg", "https://cdn.example.com/foo.jpg"},
		{"  ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := c.CoverURL(tt.cover); got != tt.want {
			t.Errorf("CoverURL(%q) = %q, want %q", tt.cover, got, tt.want)
		}
	}
}

func TestValidateActivity_Null(t *testing.T) {
	if _, err := ValidateActivity([]byte("null")); err == nil {
		t.Error("ValidateActivity(null) error = nil, want error")
	}
}

func TestUnwrapSuperJSON_KeepsOrdinaryObjects(t *testing.T) {
	raw := []byte(`{"json":1,"other":2}`)

	if got := string(unwrapSuperJSON(raw)); got != string(raw) {
		t.Errorf("unwrapSuperJSON() = %s, want unchanged", got)
	}
}
