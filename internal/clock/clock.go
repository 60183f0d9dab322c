// Package clock provides injectable time plus pausable countdowns and stopwatches.
package clock

import (
	"sync"
	"time"
)

// TimeProvider is the single source of "now" for timed game logic.
type TimeProvider interface {
	Now() time.Time
}

// System reads the real monotonic clock.
type System struct{}

// Now implements TimeProvider.
func (System) Now() time.Time {
	return time.Now()
}

// Mock is a controllable TimeProvider for tests.
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMock returns a mock clock starting at start.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

// Now implements TimeProvider.
func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the mock clock to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the mock clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Countdown counts a fixed duration down to zero and can be paused.
// While running, remaining time is derived from the deadline; while paused,
// the remaining duration is stored so a resume restores it exactly.
type Countdown struct {
	tp        TimeProvider
	total     time.Duration
	remaining time.Duration
	deadline  time.Time
	running   bool
	paused    bool
}

// NewCountdown returns an idle countdown of length d.
func NewCountdown(tp TimeProvider, d time.Duration) *Countdown {
	return &Countdown{tp: tp, total: d}
}

// Start (re)starts the countdown at its full length.
func (c *Countdown) Start() {
	c.deadline = c.tp.Now().Add(c.total)
	c.remaining = c.total
	c.running = true
	c.paused = false
}

// Pause freezes the countdown, storing the remaining duration.
func (c *Countdown) Pause() {
	if !c.running || c.paused {
		return
	}
	c.remaining = c.Remaining()
	c.paused = true
}

// Resume continues a paused countdown from its stored remaining duration.
func (c *Countdown) Resume() {
	if !c.running || !c.paused {
		return
	}
	c.deadline = c.tp.Now().Add(c.remaining)
	c.paused = false
}

// Stop cancels the countdown.
func (c *Countdown) Stop() {
	c.running = false
	c.paused = false
	c.remaining = 0
}

// Remaining returns the time left, never negative. An idle countdown has none.
func (c *Countdown) Remaining() time.Duration {
	if !c.running {
		return 0
	}
	if c.paused {
		return c.remaining
	}
	left := c.deadline.Sub(c.tp.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Active reports whether the countdown was started and has time left.
func (c *Countdown) Active() bool {
	return c.running && c.Remaining() > 0
}

// Expired reports whether a started countdown has reached zero.
func (c *Countdown) Expired() bool {
	return c.running && c.Remaining() == 0
}

// Paused reports whether the countdown is frozen.
func (c *Countdown) Paused() bool {
	return c.paused
}

// Total returns the configured length.
func (c *Countdown) Total() time.Duration {
	return c.total
}

// Stopwatch measures elapsed time excluding paused intervals.
type Stopwatch struct {
	tp          TimeProvider
	accumulated time.Duration
	startedAt   time.Time
	running     bool
}

// NewStopwatch returns a stopped stopwatch at zero.
func NewStopwatch(tp TimeProvider) *Stopwatch {
	return &Stopwatch{tp: tp}
}

// Start resets to zero and starts running.
func (s *Stopwatch) Start() {
	s.accumulated = 0
	s.startedAt = s.tp.Now()
	s.running = true
}

// Pause stops accumulating, keeping the elapsed value.
func (s *Stopwatch) Pause() {
	if !s.running {
		return
	}
	s.accumulated += s.tp.Now().Sub(s.startedAt)
	s.running = false
}

// Resume continues accumulating from the kept elapsed value.
func (s *Stopwatch) Resume() {
	if s.running {
		return
	}
	s.startedAt = s.tp.Now()
	s.running = true
}

// Elapsed returns the accumulated running time.
func (s *Stopwatch) Elapsed() time.Duration {
	if !s.running {
		return s.accumulated
	}
	return s.accumulated + s.tp.Now().Sub(s.startedAt)
}

// Running reports whether the stopwatch is accumulating.
func (s *Stopwatch) Running() bool {
	return s.running
}

// Centiseconds converts a duration to whole centiseconds.
func Centiseconds(d time.Duration) int64 {
	return int64(d / (10 * time.Millisecond))
}
