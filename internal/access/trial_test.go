package access

import (
	"testing"
	"time"
)

func fixedClock(days int, now time.Time) TrialClock {
	return NewTrialClock(days).WithNow(func() time.Time { return now })
}

func TestDayNumberProgression(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 1},
		{23 * time.Hour, 1},
		{24 * time.Hour, 2},
		{4*24*time.Hour + 23*time.Hour, 5},
		{5 * 24 * time.Hour, 5},
		{40 * 24 * time.Hour, 5},
	}
	for _, tc := range cases {
		clock := fixedClock(5, start.Add(tc.elapsed))
		got, ok := clock.DayNumber(&start)
		if !ok {
			t.Fatalf("DayNumber(elapsed=%v) reported no trial", tc.elapsed)
		}
		if got != tc.want {
			t.Fatalf("DayNumber(elapsed=%v) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestDayNumberMonotonic(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prev := 0
	for h := 0; h <= 7*24; h += 6 {
		clock := fixedClock(5, start.Add(time.Duration(h)*time.Hour))
		day, _ := clock.DayNumber(&start)
		if day < prev {
			t.Fatalf("day number decreased: %d after %d at hour %d", day, prev, h)
		}
		if day < 1 || day > 5 {
			t.Fatalf("day number %d out of range at hour %d", day, h)
		}
		prev = day
	}
}

func TestDayNumberClockSkew(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	clock := fixedClock(5, now)
	if day, ok := clock.DayNumber(&future); !ok || day != 1 {
		t.Fatalf("future start: DayNumber = %d/%v, want 1/true", day, ok)
	}
	if clock.IsExpired(&future) {
		t.Fatal("future start must not be expired")
	}
}

func TestDayNumberNoTrial(t *testing.T) {
	clock := fixedClock(5, time.Now())
	if _, ok := clock.DayNumber(nil); ok {
		t.Fatal("DayNumber(nil) reported a trial day")
	}
}

func TestExpiryBoundary(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	duration := 5 * 24 * time.Hour

	before := fixedClock(5, start.Add(duration-time.Millisecond))
	if before.IsExpired(&start) {
		t.Fatal("expired at duration-1ms")
	}
	at := fixedClock(5, start.Add(duration))
	if !at.IsExpired(&start) {
		t.Fatal("not expired at exactly the duration")
	}
}

func TestIsExpiredNoTrial(t *testing.T) {
	clock := fixedClock(5, time.Now())
	if clock.IsExpired(nil) {
		t.Fatal("missing trial record must not read as expired")
	}
}

func TestDaysRemaining(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 5},
		{time.Millisecond, 5},
		{24 * time.Hour, 4},
		{4*24*time.Hour + 23*time.Hour, 1},
		{5 * 24 * time.Hour, 0},
		{9 * 24 * time.Hour, 0},
	}
	for _, tc := range cases {
		clock := fixedClock(5, start.Add(tc.elapsed))
		if got := clock.DaysRemaining(&start); got != tc.want {
			t.Fatalf("DaysRemaining(elapsed=%v) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
	if got := fixedClock(5, start).DaysRemaining(nil); got != 0 {
		t.Fatalf("DaysRemaining(nil) = %d, want 0", got)
	}
}

func TestEndToEndFiveDayScenario(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	at := fixedClock(5, start.Add(4*24*time.Hour+23*time.Hour))
	if at.IsExpired(&start) {
		t.Fatal("expired at day 4 + 23h")
	}
	if day, _ := at.DayNumber(&start); day != 5 {
		t.Fatalf("day = %d, want 5", day)
	}
	if rem := at.DaysRemaining(&start); rem != 1 {
		t.Fatalf("remaining = %d, want 1", rem)
	}

	end := fixedClock(5, start.Add(5*24*time.Hour))
	if !end.IsExpired(&start) {
		t.Fatal("not expired at day 5 exactly")
	}
	if rem := end.DaysRemaining(&start); rem != 0 {
		t.Fatalf("remaining = %d, want 0", rem)
	}
}

func TestConfigurableTrialLength(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := fixedClock(15, start.Add(10*24*time.Hour))
	if clock.IsExpired(&start) {
		t.Fatal("15-day trial expired at day 10")
	}
	if rem := clock.DaysRemaining(&start); rem != 5 {
		t.Fatalf("remaining = %d, want 5", rem)
	}
	if NewTrialClock(0).Days() != DefaultTrialDays {
		t.Fatal("non-positive length must fall back to the default")
	}
}
