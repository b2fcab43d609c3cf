package bookings

import "time"

// Overlaps reports whether the half-open date intervals [s1, e1) and
// [s2, e2) intersect. Touching endpoints do not count: a checkout and a
// check-in on the same date are compatible. Callers must reject inverted
// or empty intervals before calling.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// DateOnly truncates t to midnight UTC. Booking intervals are calendar
// dates; time-of-day never participates in any comparison.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
