// Package poll runs independent periodic fetches and keeps the last good
// result of each.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Result is the outcome of one fetch of a region.
type Result[T any] struct {
	Region string
	Seq    uint64
	Value  T
	Err    error
	At     time.Time
}

// Region fetches one feed immediately and then once per Interval.
//
// Each fetch runs in its own goroutine, so a slow response never delays the
// next scheduled fetch. Results are handed to deliver in completion order.
type Region[T any] struct {
	Name     string
	Interval time.Duration
	Fetch    func(ctx context.Context) (T, error)
	Clock    clockwork.Clock
	Logger   *slog.Logger

	seq atomic.Uint64
}

// Run polls until ctx is canceled and all in-flight fetches have returned.
// A fetch that returns after cancellation is dropped, but one that completed
// just before it may still be delivered while Run is shutting down.
func (r *Region[T]) Run(ctx context.Context, deliver func(Result[T])) error {
	clock := r.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger = logger.With(slog.String("region", r.Name))

	var inflight sync.WaitGroup
	defer inflight.Wait()

	fire := func() {
		seq := r.seq.Add(1)

		inflight.Add(1)

		go func() {
			defer inflight.Done()

			value, err := r.Fetch(ctx)
			if ctx.Err() != nil {
				return
			}

			if err != nil {
				logger.Debug("poll fetch failed", slog.Uint64("poll.seq", seq), slog.String("error", err.Error()))
			}

			deliver(Result[T]{
				Region: r.Name,
				Seq:    seq,
				Value:  value,
				Err:    err,
				At:     clock.Now(),
			})
		}()
	}

	logger.Debug("poll started", slog.Duration("poll.interval", r.Interval))

	fire()

	ticker := clock.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("poll stopped", slog.Uint64("poll.fetches", r.seq.Load()))
			return nil
		case <-ticker.Chan():
			fire()
		}
	}
}

// Snapshot holds the last successfully applied value of a region.
// It is not safe for concurrent use; callers apply results from one goroutine.
type Snapshot[T any] struct {
	value    T
	loaded   bool
	seq      uint64
	updated  time.Time
	failures int
	lastErr  error
}

// Apply records r. A successful result replaces the value wholesale,
// whatever its sequence number. A failed result keeps the previous value
// and counts toward Failures. Apply reports whether the value was replaced.
func (s *Snapshot[T]) Apply(r Result[T]) bool {
	if r.Err != nil {
		s.failures++
		s.lastErr = r.Err

		return false
	}

	s.value = r.Value
	s.loaded = true
	s.seq = r.Seq
	s.updated = r.At
	s.failures = 0
	s.lastErr = nil

	return true
}

// Value returns the current value and whether any fetch has succeeded.
func (s *Snapshot[T]) Value() (T, bool) {
	return s.value, s.loaded
}

// Loaded reports whether any fetch has succeeded.
func (s *Snapshot[T]) Loaded() bool {
	return s.loaded
}

// Seq returns the sequence number of the applied value.
func (s *Snapshot[T]) Seq() uint64 {
	return s.seq
}

// Updated returns when the applied value was fetched.
func (s *Snapshot[T]) Updated() time.Time {
	return s.updated
}

// Failures returns the number of consecutive failed fetches.
func (s *Snapshot[T]) Failures() int {
	return s.failures
}

// Err returns the most recent fetch error since the last success.
func (s *Snapshot[T]) Err() error {
	return s.lastErr
}
