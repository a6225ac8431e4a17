package schedule

import (
	"testing"
	"time"
)

// at builds a time on an arbitrary date with the given clock reading.
func at(hhmm string, t *testing.T) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		t.Fatalf("bad clock %q: %v", hhmm, err)
	}
	return time.Date(2025, 6, 1, parsed.Hour(), parsed.Minute(), 0, 0, time.Local)
}

func TestWindow_Contiguous(t *testing.T) {
	t.Parallel()

	w, err := Parse("08:00", "13:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !w.Contains(at("12:00", t)) {
		t.Errorf("12:00 must be inside 08:00-13:00")
	}
	if w.Contains(at("07:59", t)) {
		t.Errorf("07:59 must be outside 08:00-13:00")
	}

	transitions := []struct {
		clock string
		want  time.Duration
	}{
		{"07:00", time.Hour},
		{"08:00", 5 * time.Hour},
		{"11:00", 2 * time.Hour},
		{"23:00", 9 * time.Hour},
	}
	for _, tc := range transitions {
		if got := w.UntilTransition(at(tc.clock, t)); got != tc.want {
			t.Errorf("transition from %s: want %v, got %v", tc.clock, tc.want, got)
		}
	}
}

func TestWindow_SplitAcrossMidnight(t *testing.T) {
	t.Parallel()

	w, err := Parse("23:00", "07:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	for _, clock := range []string{"23:55", "00:00", "05:00"} {
		if !w.Contains(at(clock, t)) {
			t.Errorf("%s must be inside 23:00-07:00", clock)
		}
	}
	if w.Contains(at("12:00", t)) {
		t.Errorf("12:00 must be outside 23:00-07:00")
	}

	if got := w.UntilTransition(at("23:30", t)); got != 7*time.Hour+30*time.Minute {
		t.Errorf("transition from 23:30: want 7h30m, got %v", got)
	}
	if got := w.UntilTransition(at("04:00", t)); got != 3*time.Hour {
		t.Errorf("transition from 04:00: want 3h, got %v", got)
	}
}

func TestWindow_MidnightBoundaries(t *testing.T) {
	t.Parallel()

	w, err := Parse("23:00", "00:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !w.Contains(at("23:55", t)) {
		t.Errorf("23:55 must be inside 23:00-00:00")
	}
	if w.Contains(at("00:01", t)) {
		t.Errorf("00:01 must be outside 23:00-00:00")
	}

	w, err = Parse("00:00", "11:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !w.Contains(at("06:00", t)) {
		t.Errorf("06:00 must be inside 00:00-11:00")
	}
	if w.Contains(at("23:55", t)) {
		t.Errorf("23:55 must be outside 00:00-11:00")
	}
}

func TestWindow_AllDay(t *testing.T) {
	t.Parallel()

	w := AllDay()
	for _, clock := range []string{"00:00", "03:17", "12:00", "23:59"} {
		if !w.Contains(at(clock, t)) {
			t.Errorf("all-day window must contain %s", clock)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, tc := range [][2]string{
		{"8am", "13:00"},
		{"08:00", "25:00"},
		{"", "13:00"},
	} {
		if _, err := Parse(tc[0], tc[1]); err == nil {
			t.Errorf("Parse(%q, %q): expected error", tc[0], tc[1])
		}
	}
}
