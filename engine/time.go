package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil date at day granularity (schedule/attendance/leave keys)
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool         { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool         { return d.Time.Equal(o.Time) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// Arithmetic / properties
func (d Date) AddDays(n int) Date      { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) Weekday() time.Weekday   { return d.Time.Weekday() }
func (d Date) Year() int               { return d.Time.Year() }
func (d Date) IsZero() bool            { return d.Time.IsZero() }
func (d Date) String() string          { return d.Time.Format("2006-01-02") }

// At combines the date with a time of day into an absolute timestamp.
func (d Date) At(t TimeOfDay) time.Time {
	return d.Time.Add(time.Duration(t) * time.Minute)
}

// ISOWeek returns the ISO 8601 year/week the date falls in. Weekly hour caps
// are accounted per ISO week (Monday through Sunday).
func (d Date) ISOWeek() (year, week int) { return d.Time.ISOWeek() }

// WeekStart returns the Monday of the date's ISO week.
func (d Date) WeekStart() Date {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDays(-offset)
}

// WeekEnd returns the Sunday of the date's ISO week.
func (d Date) WeekEnd() Date { return d.WeekStart().AddDays(6) }

// =============================================================================
// TIME OF DAY - Minutes since midnight
// =============================================================================

type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay { return TimeOfDay(hour*60 + minute) }

// TimeOfDayOf extracts the clock position of an absolute timestamp.
func TimeOfDayOf(t time.Time) TimeOfDay { return NewTimeOfDay(t.Hour(), t.Minute()) }

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// =============================================================================
// WINDOW - A start/end time window within a day
// =============================================================================

// Window is a time window on a given date. An End at or before Start means
// the window wraps past midnight (an overnight shift).
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewWindow(start, end TimeOfDay) Window { return Window{Start: start, End: end} }

// endMinutes returns the end as minutes from the window's own midnight,
// extended past 1440 for overnight windows.
func (w Window) endMinutes() int {
	end := int(w.End)
	if end <= int(w.Start) {
		end += 24 * 60
	}
	return end
}

// Duration returns the window length in hours, handling overnight wrap.
func (w Window) Duration() Hours {
	minutes := w.endMinutes() - int(w.Start)
	return NewHours(float64(minutes) / 60)
}

// Overlaps reports whether two same-date windows share any time.
// Windows are half-open: [Start, End).
func (w Window) Overlaps(o Window) bool {
	aStart, aEnd := int(w.Start), w.endMinutes()
	bStart, bEnd := int(o.Start), o.endMinutes()
	return aStart < bEnd && bStart < aEnd
}

// OverlapsBand reports whether any part of the window falls inside band.
// Used for night-band overtime classification; the band itself is usually
// overnight (e.g. 22:00-05:00), so both sides are checked shifted by a day.
func (w Window) OverlapsBand(band Window) bool {
	aStart, aEnd := int(w.Start), w.endMinutes()
	bStart, bEnd := int(band.Start), band.endMinutes()
	day := 24 * 60
	for _, shift := range []int{-day, 0, day} {
		if aStart < bEnd+shift && bStart+shift < aEnd {
			return true
		}
	}
	return false
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
