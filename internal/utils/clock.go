package utils

import "time"

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns wall-clock time in loc
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// civilDay returns midnight UTC of t's calendar date in loc, so calendar
// days can be subtracted without DST or month-length effects.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b in loc.
// Negative when b is before a.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	return int(civilDay(b, loc).Sub(civilDay(a, loc)).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar date in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DaysBetween(a, b, loc) == 0
}
