package utils

import "time"

// Clock returns the current time. Loops read time through a Clock so tests can
// drive debounce timers without sleeping.
type Clock func() time.Time

// Timer gates repeated actions. A fresh Timer has already reached its limit, so
// the first Reached call after construction returns true.
type Timer struct {
	limit time.Duration
	now   Clock
	start time.Time
}

func NewTimer(limit time.Duration, now Clock) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{limit: limit, now: now}
}

// Reached reports whether limit has elapsed since the last Reset.
func (t *Timer) Reached() bool {
	if t.start.IsZero() {
		return true
	}
	return t.now().Sub(t.start) >= t.limit
}

func (t *Timer) Reset() {
	t.start = t.now()
}

// Clear puts the timer back into the reached state.
func (t *Timer) Clear() {
	t.start = time.Time{}
}

func (t *Timer) Limit() time.Duration {
	return t.limit
}

// Elapsed returns the time since the last Reset, zero if never reset.
func (t *Timer) Elapsed() time.Duration {
	if t.start.IsZero() {
		return 0
	}
	return t.now().Sub(t.start)
}
