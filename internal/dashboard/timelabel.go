package dashboard

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
)

// LabelRefreshInterval is how often a mounted label recomputes its text.
const LabelRefreshInterval = time.Minute

// labelGen hands out mount generations unique across all labels, so a tick
// queued by a label that was replaced under the same key is never mistaken
// for the new label's tick.
var labelGen atomic.Uint64

// labelTickMsg asks the label keyed Key to recompute its text.
type labelTickMsg struct {
	Key string
	Gen uint64
}

// TimeLabel is a "time ago" string that keeps itself current.
//
// Mount computes the text and arms a timer; each time the timer fires a
// labelTickMsg is sent through notify and the owner calls Refresh, which
// recomputes from the clock's current time and re-arms. Unmount stops the
// timer. All methods must be called from the owner's update loop.
type TimeLabel struct {
	key       string
	createdAt time.Time
	clock     clockwork.Clock
	notify    func(tea.Msg)

	text  string
	gen   uint64
	timer clockwork.Timer
}

// NewTimeLabel creates an unmounted label for createdAt.
func NewTimeLabel(key string, createdAt time.Time, clock clockwork.Clock, notify func(tea.Msg)) *TimeLabel {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	if notify == nil {
		notify = func(tea.Msg) {}
	}

	return &TimeLabel{
		key:       key,
		createdAt: createdAt,
		clock:     clock,
		notify:    notify,
	}
}

// Mount computes the text immediately and starts the refresh timer.
// Mounting a mounted label is a no-op.
func (l *TimeLabel) Mount() {
	if l.timer != nil {
		return
	}

	l.gen = labelGen.Add(1)
	l.recompute()
	l.arm()
}

// Unmount stops the refresh timer. Ticks already queued are ignored.
func (l *TimeLabel) Unmount() {
	if l.timer == nil {
		return
	}

	l.timer.Stop()
	l.timer = nil
	l.gen = 0
}

// Mounted reports whether the refresh timer is running.
func (l *TimeLabel) Mounted() bool {
	return l.timer != nil
}

// Refresh handles a tick for generation gen. It reports whether the tick
// belonged to the current mount; stale ticks change nothing.
func (l *TimeLabel) Refresh(gen uint64) bool {
	if l.timer == nil || gen != l.gen {
		return false
	}

	l.recompute()
	l.arm()

	return true
}

// SetCreatedAt replaces the timestamp without restarting the timer.
func (l *TimeLabel) SetCreatedAt(createdAt time.Time) {
	if createdAt.Equal(l.createdAt) {
		return
	}

	l.createdAt = createdAt
	if l.timer != nil {
		l.recompute()
	}
}

// Text returns the relative time as of the last mount or tick.
func (l *TimeLabel) Text() string {
	return l.text
}

// Absolute returns the full timestamp.
func (l *TimeLabel) Absolute() string {
	return AbsoluteTime(l.createdAt)
}

// Gen returns the current mount generation, zero when unmounted.
func (l *TimeLabel) Gen() uint64 {
	return l.gen
}

func (l *TimeLabel) recompute() {
	l.text = RelativeTime(l.createdAt, l.clock.Now())
}

func (l *TimeLabel) arm() {
	tick := labelTickMsg{Key: l.key, Gen: l.gen}
	notify := l.notify

	l.timer = l.clock.AfterFunc(LabelRefreshInterval, func() {
		notify(tick)
	})
}
