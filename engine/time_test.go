package engine

import (
	"testing"
	"time"
)

// =============================================================================
// WINDOW DURATION AND OVERLAP TESTS
// =============================================================================

func TestWindow_Duration_DayShift(t *testing.T) {
	// GIVEN: A 09:00-17:00 window
	// WHEN: Computing its duration
	// THEN: 8 hours

	w := NewWindow(NewTimeOfDay(9, 0), NewTimeOfDay(17, 0))
	if got := w.Duration().Float64(); got != 8 {
		t.Errorf("Expected 8h, got %.2f", got)
	}
}

func TestWindow_Duration_OvernightWrap(t *testing.T) {
	// GIVEN: A 22:00-06:00 window (end before start)
	// WHEN: Computing its duration
	// THEN: 8 hours, wrapping past midnight

	w := NewWindow(NewTimeOfDay(22, 0), NewTimeOfDay(6, 0))
	if got := w.Duration().Float64(); got != 8 {
		t.Errorf("Expected 8h across midnight, got %.2f", got)
	}
}

func TestWindow_Overlaps_HalfOpen(t *testing.T) {
	// GIVEN: Adjacent windows 09:00-17:00 and 17:00-22:00
	// WHEN: Checking overlap
	// THEN: Touching endpoints do not overlap

	day := NewWindow(NewTimeOfDay(9, 0), NewTimeOfDay(17, 0))
	evening := NewWindow(NewTimeOfDay(17, 0), NewTimeOfDay(22, 0))

	if day.Overlaps(evening) {
		t.Error("Adjacent windows must not overlap")
	}

	// A one-minute intrusion does overlap
	late := NewWindow(NewTimeOfDay(16, 59), NewTimeOfDay(22, 0))
	if !day.Overlaps(late) {
		t.Error("16:59-22:00 must overlap 09:00-17:00")
	}
}

func TestWindow_Overlaps_Contained(t *testing.T) {
	// GIVEN: 09:00-17:00 and a contained 10:00-12:00 window
	// WHEN: Checking overlap both ways
	// THEN: Overlap is symmetric

	outer := NewWindow(NewTimeOfDay(9, 0), NewTimeOfDay(17, 0))
	inner := NewWindow(NewTimeOfDay(10, 0), NewTimeOfDay(12, 0))

	if !outer.Overlaps(inner) || !inner.Overlaps(outer) {
		t.Error("Containment must count as overlap in both directions")
	}
}

// =============================================================================
// NIGHT BAND TESTS
// =============================================================================

func TestWindow_OverlapsBand_NightBand(t *testing.T) {
	// GIVEN: The 22:00-05:00 night band
	// WHEN: Checking intervals on either side of midnight
	// THEN: Both sides of the band register, day work does not

	band := NewWindow(NewTimeOfDay(22, 0), NewTimeOfDay(5, 0))

	cases := []struct {
		name   string
		window Window
		want   bool
	}{
		{"evening tail into band", NewWindow(NewTimeOfDay(21, 0), NewTimeOfDay(23, 0)), true},
		{"early morning inside band", NewWindow(NewTimeOfDay(3, 0), NewTimeOfDay(4, 30)), true},
		{"spans entire band", NewWindow(NewTimeOfDay(20, 0), NewTimeOfDay(6, 0)), true},
		{"plain day work", NewWindow(NewTimeOfDay(9, 0), NewTimeOfDay(17, 0)), false},
		{"ends exactly at band start", NewWindow(NewTimeOfDay(19, 0), NewTimeOfDay(22, 0)), false},
		{"starts exactly at band end", NewWindow(NewTimeOfDay(5, 0), NewTimeOfDay(9, 0)), false},
	}

	for _, tc := range cases {
		if got := tc.window.OverlapsBand(band); got != tc.want {
			t.Errorf("%s: OverlapsBand(%s) = %v, want %v", tc.name, tc.window, got, tc.want)
		}
	}
}

// =============================================================================
// ISO WEEK TESTS
// =============================================================================

func TestDate_WeekStart_MondayAnchored(t *testing.T) {
	// GIVEN: Dates across one ISO week (Mon Jun 2 - Sun Jun 8, 2025)
	// WHEN: Computing WeekStart/WeekEnd
	// THEN: Every day maps to the same Monday and Sunday

	monday := NewDate(2025, time.June, 2)
	sunday := NewDate(2025, time.June, 8)

	for d := monday; d.BeforeOrEqual(sunday); d = d.AddDays(1) {
		if !d.WeekStart().Equal(monday) {
			t.Errorf("%s: WeekStart = %s, want %s", d, d.WeekStart(), monday)
		}
		if !d.WeekEnd().Equal(sunday) {
			t.Errorf("%s: WeekEnd = %s, want %s", d, d.WeekEnd(), sunday)
		}
	}

	// The next Monday starts a new week
	next := sunday.AddDays(1)
	if !next.WeekStart().Equal(next) {
		t.Errorf("Monday %s must start its own week, got %s", next, next.WeekStart())
	}
}

func TestDate_At_CombinesTimeOfDay(t *testing.T) {
	// GIVEN: A date and a time of day
	// WHEN: Combining them
	// THEN: The absolute timestamp carries both

	ts := NewDate(2025, time.June, 2).At(NewTimeOfDay(9, 30))
	want := time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("At() = %s, want %s", ts, want)
	}
}
