package dashboard

import (
	"testing"
	"time"
)

func TestTimeLabel_MountComputesImmediately(t *testing.T) {
	clock := newFakeClock()
	label := NewTimeLabel("a", testNow.Add(-90*time.Second), clock, nil)

	if label.Text() != "" {
		t.Fatalf("unmounted label text = %q, want empty", label.Text())
	}

	label.Mount()
	defer label.Unmount()

	if got := label.Text(); got != "1 minute ago" {
		t.Errorf("Text() = %q, want %q", got, "1 minute ago")
	}
}

func TestTimeLabel_TickRecomputesFromCurrentTime(t *testing.T) {
	clock := newFakeClock()
	ticks := newCollector()

	label := NewTimeLabel("a", testNow.Add(-90*time.Second), clock, ticks.notify)
	label.Mount()
	defer label.Unmount()

	clock.Advance(LabelRefreshInterval)

	tick := ticks.next(t)
	if tick.Key != "a" || tick.Gen != label.Gen() {
		t.Fatalf("tick = %+v, want key a gen %d", tick, label.Gen())
	}

	if !label.Refresh(tick.Gen) {
		t.Fatal("Refresh() rejected the current generation")
	}

	if got := label.Text(); got != "2 minutes ago" {
		t.Errorf("Text() after tick = %q, want %q", got, "2 minutes ago")
	}

	// The timer re-arms after each tick.
	clock.Advance(LabelRefreshInterval)

	tick = ticks.next(t)
	label.Refresh(tick.Gen)

	if got := label.Text(); got != "3 minutes ago" {
		t.Errorf("Text() after second tick = %q, want %q", got, "3 minutes ago")
	}
}

func TestTimeLabel_UnmountCancelsTimer(t *testing.T) {
	clock := newFakeClock()
	ticks := newCollector()

	label := NewTimeLabel("a", testNow.Add(-90*time.Second), clock, ticks.notify)
	label.Mount()

	gen := label.Gen()
	label.Unmount()

	if label.Mounted() {
		t.Fatal("label still mounted after Unmount")
	}

	clock.Advance(5 * LabelRefreshInterval)
	ticks.expectNone(t)

	if label.Refresh(gen) {
		t.Error("Refresh() accepted a tick after unmount")
	}
}

func TestTimeLabel_StaleGenerationIgnored(t *testing.T) {
	clock := newFakeClock()
	label := NewTimeLabel("a", testNow.Add(-90*time.Second), clock, nil)

	label.Mount()
	old := label.Gen()
	label.Unmount()

	label.Mount()
	defer label.Unmount()

	if label.Gen() == old {
		t.Fatal("remount reused the previous generation")
	}

	clock.Advance(10 * time.Minute)

	before := label.Text()
	if label.Refresh(old) {
		t.Error("Refresh() accepted a stale generation")
	}

	if label.Text() != before {
		t.Errorf("stale tick changed text to %q", label.Text())
	}
}

func TestTimeLabel_FutureAndAncient(t *testing.T) {
	clock := newFakeClock()

	future := NewTimeLabel("f", testNow.Add(5*time.Minute), clock, nil)
	future.Mount()
	defer future.Unmount()

	if got := future.Text(); got != "5 minutes from now" {
		t.Errorf("future Text() = %q, want %q", got, "5 minutes from now")
	}

	ancient := NewTimeLabel("o", testNow.AddDate(-100, 0, 0), clock, nil)
	ancient.Mount()
	defer ancient.Unmount()

	if got := ancient.Text(); got != "a long while ago" {
		t.Errorf("ancient Text() = %q, want %q", got, "a long while ago")
	}
}

func TestTimeLabel_SetCreatedAtKeepsTimer(t *testing.T) {
	clock := newFakeClock()
	label := NewTimeLabel("a", testNow.Add(-90*time.Second), clock, nil)
	label.Mount()
	defer label.Unmount()

	gen := label.Gen()
	label.SetCreatedAt(testNow.Add(-5 * time.Minute))

	if label.Gen() != gen {
		t.Error("SetCreatedAt() restarted the label")
	}

	if got := label.Text(); got != "5 minutes ago" {
		t.Errorf("Text() = %q, want %q", got, "5 minutes ago")
	}
}
