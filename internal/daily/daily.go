// Package daily decides when the daily puzzle set rolls over at US Central
// Time midnight.
package daily

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/dotdaily/internal/clock"
)

const (
	cstOffset = -6 * time.Hour
	cdtOffset = -5 * time.Hour
)

// IsDST reports whether US daylight saving time is in effect at t. DST runs
// from 2:00 local on the second Sunday of March to 2:00 local on the first
// Sunday of November.
func IsDST(t time.Time) bool {
	t = t.UTC()
	year := t.Year()
	start := nthSunday(year, time.March, 2).Add(8 * time.Hour)
	end := nthSunday(year, time.November, 1).Add(7 * time.Hour)
	return !t.Before(start) && t.Before(end)
}

// nthSunday returns 00:00 UTC on the n-th Sunday of the month.
func nthSunday(year int, month time.Month, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (7 - int(first.Weekday())) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

// CentralOffset is the UTC offset of US Central Time at t.
func CentralOffset(t time.Time) time.Duration {
	if IsDST(t) {
		return cdtOffset
	}
	return cstOffset
}

// midnight returns the instant of 00:00 Central on the given calendar date.
func midnight(year int, month time.Month, day int) time.Time {
	cst := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Add(-cstOffset)
	cdt := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Add(-cdtOffset)
	if IsDST(cdt) {
		return cdt
	}
	return cst
}

// LastMidnight is the most recent Central midnight at or before now.
func LastMidnight(now time.Time) time.Time {
	local := now.UTC().Add(CentralOffset(now))
	m := midnight(local.Year(), local.Month(), local.Day())
	if m.After(now) {
		prev := local.AddDate(0, 0, -1)
		m = midnight(prev.Year(), prev.Month(), prev.Day())
	}
	return m
}

// NextReset is the first Central midnight strictly after now.
func NextReset(now time.Time) time.Time {
	local := now.UTC().Add(CentralOffset(now))
	next := local.AddDate(0, 0, 1)
	return midnight(next.Year(), next.Month(), next.Day())
}

// ShouldReset reports whether lastReset predates the most recent Central
// midnight. A zero lastReset always resets.
func ShouldReset(lastReset, now time.Time) bool {
	if lastReset.IsZero() {
		return true
	}
	return lastReset.Before(LastMidnight(now))
}

// Store persists the reset marker and the per-category completions.
type Store interface {
	LastReset(ctx context.Context) (time.Time, error)
	SetLastReset(ctx context.Context, t time.Time) error
	ClearCompletions(ctx context.Context) error
}

// Scheduler clears stale completions when a day boundary has passed.
type Scheduler struct {
	store  Store
	tp     clock.TimeProvider
	logger zerolog.Logger
}

// NewScheduler builds a scheduler over store.
func NewScheduler(store Store, tp clock.TimeProvider, logger zerolog.Logger) *Scheduler {
	if tp == nil {
		tp = clock.System{}
	}
	return &Scheduler{store: store, tp: tp, logger: logger}
}

// Check clears completions if a reset is due and reports whether it did.
// Settings are left untouched.
func (s *Scheduler) Check(ctx context.Context) (bool, error) {
	now := s.tp.Now()
	last, err := s.store.LastReset(ctx)
	if err != nil {
		return false, err
	}
	if !ShouldReset(last, now) {
		return false, nil
	}
	if err := s.store.ClearCompletions(ctx); err != nil {
		return false, err
	}
	if err := s.store.SetLastReset(ctx, now); err != nil {
		return false, err
	}
	s.logger.Info().
		Time("last_reset", last).
		Time("midnight", LastMidnight(now)).
		Msg("daily reset")
	return true, nil
}

// Force clears completions regardless of the last reset time.
func (s *Scheduler) Force(ctx context.Context) error {
	if err := s.store.ClearCompletions(ctx); err != nil {
		return err
	}
	return s.store.SetLastReset(ctx, s.tp.Now())
}

// Until is the time remaining before the next reset.
func (s *Scheduler) Until() time.Duration {
	now := s.tp.Now()
	return NextReset(now).Sub(now)
}
