// Package schedule decides when the control loop is allowed to act.
package schedule

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Window is a daily time-of-day range. Ranges may wrap midnight
// (23:00-07:00); begin == end covers the whole day.
type Window struct {
	begin, end time.Duration // offsets from midnight
	split      bool          // wraps midnight
	always     bool
}

// AllDay returns a window that is always active.
func AllDay() Window {
	return Window{always: true}
}

// Parse builds a window from "HH:MM" boundaries.
func Parse(begin, end string) (Window, error) {
	b, err := parseClock(begin)
	if err != nil {
		return Window{}, fmt.Errorf("control window start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("control window end: %w", err)
	}
	return Window{begin: b, end: e, split: b >= e}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Contains reports whether t falls inside the window. Boundaries are
// inclusive.
func (w Window) Contains(t time.Time) bool {
	if w.always {
		return true
	}
	tod := timeOfDay(t)
	if w.split {
		return tod <= w.end || w.begin <= tod
	}
	return w.begin <= tod && tod <= w.end
}

// UntilTransition returns how long until the window next opens or closes.
func (w Window) UntilTransition(t time.Time) time.Duration {
	if w.always {
		return day
	}
	tod := timeOfDay(t)
	if w.split {
		return toNext(tod, w.end, w.begin)
	}
	return toNext(tod, w.begin, w.end)
}

// toNext assumes a <= b and returns the time from t to the nearer of the two
// boundaries ahead, wrapping to a on the next day when both have passed.
func toNext(t, a, b time.Duration) time.Duration {
	switch {
	case t < a:
		return a - t
	case t < b:
		return b - t
	default:
		return day - (t - a)
	}
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}
