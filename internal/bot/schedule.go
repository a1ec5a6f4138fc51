package bot

import (
	"time"
)

// parseSimpleTime parses a "HH:MM" string into today's wall-clock time in the
// timezone of base. Returns the zero time and false on parse failure.
func parseSimpleTime(hhmm string, base time.Time) (time.Time, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(base.Year(), base.Month(), base.Day(), t.Hour(), t.Minute(), 0, 0, base.Location()), true
}

// simpleWindowContains returns whether now is inside the [start, stop) window.
// Handles overnight windows where stop < start (e.g. 22:00-06:00).
func simpleWindowContains(now, start, stop time.Time) bool {
	if stop.After(start) {
		// Normal same-day window
		return !now.Before(start) && now.Before(stop)
	}
	// Overnight: active from start until midnight, and again from midnight to stop
	return !now.Before(start) || now.Before(stop)
}

// activeWindow reports whether now falls into the configured active hours. An
// unset window is always active.
type activeWindow struct {
	from, to string
}

func (w activeWindow) contains(now time.Time) bool {
	if w.from == "" && w.to == "" {
		return true
	}
	start, startOK := parseSimpleTime(w.from, now)
	stop, stopOK := parseSimpleTime(w.to, now)
	if !startOK || !stopOK {
		return true
	}
	return simpleWindowContains(now, start, stop)
}

func (w activeWindow) String() string {
	if w.from == "" && w.to == "" {
		return "always"
	}
	return w.from + "-" + w.to
}
