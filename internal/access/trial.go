package access

import "time"

const dayLength = 24 * time.Hour

// DefaultTrialDays is the standard free-trial length. Promotional flows
// may configure a longer window; the value always comes from config.
const DefaultTrialDays = 5

// TrialClock answers day-number, expiry and remaining-days questions for
// a recorded trial start. All math is elapsed wall-clock duration from
// the recorded instant; there is no calendar or timezone handling.
type TrialClock struct {
	days int
	now  func() time.Time
}

// NewTrialClock builds a clock for the given trial length in days.
func NewTrialClock(days int) TrialClock {
	if days <= 0 {
		days = DefaultTrialDays
	}
	return TrialClock{days: days, now: time.Now}
}

// WithNow returns a copy using the given time source. Tests use this to
// pin "now".
func (c TrialClock) WithNow(now func() time.Time) TrialClock {
	c.now = now
	return c
}

// Days returns the configured trial length.
func (c TrialClock) Days() int { return c.days }

// DayNumber returns the 1-indexed trial day for the given start, clamped
// to [1, Days]. A start in the future (clock skew) counts as day 1.
// ok is false when no trial was ever started.
func (c TrialClock) DayNumber(start *time.Time) (int, bool) {
	if start == nil {
		return 0, false
	}
	elapsed := c.now().Sub(*start)
	if elapsed < 0 {
		return 1, true
	}
	day := int(elapsed/dayLength) + 1
	if day > c.days {
		day = c.days
	}
	return day, true
}

// IsExpired reports whether the full trial window has elapsed. A missing
// start means "trial never started", which is not expired.
func (c TrialClock) IsExpired(start *time.Time) bool {
	if start == nil {
		return false
	}
	return c.now().Sub(*start) >= time.Duration(c.days)*dayLength
}

// DaysRemaining returns the whole days left in the trial, rounding any
// partial day up, floored at zero. Zero when no start was recorded.
func (c TrialClock) DaysRemaining(start *time.Time) int {
	if start == nil {
		return 0
	}
	remaining := time.Duration(c.days)*dayLength - c.now().Sub(*start)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + dayLength - 1) / dayLength)
}
