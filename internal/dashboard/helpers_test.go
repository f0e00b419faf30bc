package dashboard

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"

	"github.com/kaizoku-dev/kzk/internal/client"
)

const (
	testBaseURL = "http://kaizoku.local"
	waitTimeout = 2 * time.Second
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	mu       sync.Mutex
	library  *client.Library
	activity *client.ActivitySummary
	history  []client.HistoryEntry
	err      error
}

func (f *fakeFetcher) Library(context.Context) (*client.Library, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.library, f.err
}

func (f *fakeFetcher) Activity(context.Context) (*client.ActivitySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.activity, f.err
}

func (f *fakeFetcher) History(context.Context) ([]client.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.history, f.err
}

func (f *fakeFetcher) QueueURL(queue, status string) string {
	return client.New(testBaseURL, "").QueueURL(queue, status)
}

func (f *fakeFetcher) CoverURL(cover string) string {
	return client.New(testBaseURL, "").CoverURL(cover)
}

func resolveQueue(queue, status string) string {
	return (&fakeFetcher{}).QueueURL(queue, status)
}

// collector records label ticks.
type collector struct {
	ch chan tea.Msg
}

func newCollector() *collector {
	return &collector{ch: make(chan tea.Msg, 16)}
}

func (c *collector) notify(msg tea.Msg) {
	c.ch <- msg
}

func (c *collector) next(t *testing.T) labelTickMsg {
	t.Helper()

	select {
	case msg := <-c.ch:
		tick, ok := msg.(labelTickMsg)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}

		return tick
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for label tick")
		return labelTickMsg{}
	}
}

func (c *collector) expectNone(t *testing.T) {
	t.Helper()

	select {
	case msg := <-c.ch:
		t.Fatalf("unexpected message after unmount: %#v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func newFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(testNow)
}

func entry(id, title, file string, size int64, index int, createdAt time.Time) client.HistoryEntry {
	return client.HistoryEntry{
		ID:        id,
		CreatedAt: createdAt,
		FileName:  file,
		Size:      size,
		Chapter:   client.Chapter{Index: index},
		Manga:     client.Manga{Title: title},
	}
}

func plainView(p *Panel) string {
	return ansi.Strip(p.View())
}

func lineContaining(t *testing.T, view, needle string) (int, string) {
	t.Helper()

	for i, line := range strings.Split(view, "\n") {
		if strings.Contains(line, needle) {
			return i, line
		}
	}

	t.Fatalf("no line contains %q in view:\n%s", needle, view)

	return -1, ""
}
