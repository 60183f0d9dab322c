package daily

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/dotdaily/internal/clock"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestIsDST(t *testing.T) {
	cases := []struct {
		at   time.Time
		want bool
	}{
		{utc(2025, time.January, 15, 12, 0), false},
		{utc(2025, time.July, 4, 12, 0), true},
		{utc(2025, time.March, 9, 7, 59), false},
		{utc(2025, time.March, 9, 8, 0), true},
		{utc(2025, time.November, 2, 6, 59), true},
		{utc(2025, time.November, 2, 7, 0), false},
		{utc(2024, time.March, 10, 8, 0), true},
		{utc(2024, time.November, 3, 7, 0), false},
	}
	for _, tc := range cases {
		if got := IsDST(tc.at); got != tc.want {
			t.Fatalf("IsDST(%v): expected %v, got %v", tc.at, tc.want, got)
		}
	}
}

func TestLastMidnight(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{utc(2025, time.July, 15, 12, 0), utc(2025, time.July, 15, 5, 0)},
		{utc(2025, time.January, 15, 3, 0), utc(2025, time.January, 14, 6, 0)},
		{utc(2025, time.March, 9, 10, 0), utc(2025, time.March, 9, 6, 0)},
		{utc(2025, time.November, 2, 12, 0), utc(2025, time.November, 2, 5, 0)},
		{utc(2025, time.July, 15, 5, 0), utc(2025, time.July, 15, 5, 0)},
	}
	for _, tc := range cases {
		if got := LastMidnight(tc.now); !got.Equal(tc.want) {
			t.Fatalf("LastMidnight(%v): expected %v, got %v", tc.now, tc.want, got)
		}
	}
}

func TestNextReset(t *testing.T) {
	if got := NextReset(utc(2025, time.March, 8, 12, 0)); !got.Equal(utc(2025, time.March, 9, 6, 0)) {
		t.Fatalf("expected CST midnight on DST start day, got %v", got)
	}
	if got := NextReset(utc(2025, time.March, 9, 12, 0)); !got.Equal(utc(2025, time.March, 10, 5, 0)) {
		t.Fatalf("expected CDT midnight after DST start, got %v", got)
	}
	if got := NextReset(utc(2025, time.November, 2, 12, 0)); !got.Equal(utc(2025, time.November, 3, 6, 0)) {
		t.Fatalf("expected CST midnight after DST end, got %v", got)
	}
}

func TestShouldResetBoundary(t *testing.T) {
	yesterdayLate := utc(2025, time.June, 10, 4, 59) // 23:59 CDT June 9
	todayEarly := utc(2025, time.June, 10, 5, 1)     // 00:01 CDT June 10
	todayLate := utc(2025, time.June, 11, 4, 0)      // 23:00 CDT June 10
	if !ShouldReset(yesterdayLate, todayEarly) {
		t.Fatalf("expected reset across midnight")
	}
	if ShouldReset(todayEarly, todayLate) {
		t.Fatalf("expected no reset within the same day")
	}
	if !ShouldReset(time.Time{}, todayEarly) {
		t.Fatalf("expected reset when never reset before")
	}
}

type fakeStore struct {
	last    time.Time
	cleared int
}

func (f *fakeStore) LastReset(context.Context) (time.Time, error) { return f.last, nil }

func (f *fakeStore) SetLastReset(_ context.Context, t time.Time) error {
	f.last = t
	return nil
}

func (f *fakeStore) ClearCompletions(context.Context) error {
	f.cleared++
	return nil
}

func TestSchedulerCheck(t *testing.T) {
	mock := clock.NewMock(utc(2025, time.June, 10, 5, 1))
	store := &fakeStore{last: utc(2025, time.June, 10, 4, 59)}
	s := NewScheduler(store, mock, zerolog.Nop())

	reset, err := s.Check(context.Background())
	if err != nil || !reset {
		t.Fatalf("expected reset, got %v %v", reset, err)
	}
	if store.cleared != 1 || !store.last.Equal(mock.Now()) {
		t.Fatalf("expected completions cleared and marker updated, got %+v", store)
	}

	mock.Advance(10 * time.Hour)
	reset, err = s.Check(context.Background())
	if err != nil || reset {
		t.Fatalf("expected no second reset on the same day, got %v %v", reset, err)
	}
	if store.cleared != 1 {
		t.Fatalf("expected a single clear, got %d", store.cleared)
	}
}

func TestSchedulerUntil(t *testing.T) {
	mock := clock.NewMock(utc(2025, time.June, 10, 23, 0)) // 18:00 CDT
	s := NewScheduler(&fakeStore{}, mock, zerolog.Nop())
	if got := s.Until(); got != 6*time.Hour {
		t.Fatalf("expected 6h until reset, got %v", got)
	}
}
