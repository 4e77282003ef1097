package shared

import "time"

// Clock supplies the current time. Date constraints that depend on "today"
// read it through a Clock so they can be evaluated deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.Time
}

// DateOf returns the calendar date of t, as read in t's own location,
// at midnight UTC. Dates compared this way ignore time of day and zone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date as read from the clock.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}
