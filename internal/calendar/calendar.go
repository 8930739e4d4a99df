// Package calendar provides the week-boundary math used by the quota ledger.
// Weeks run Monday 00:00:00 UTC to the following Monday, exclusive.
package calendar

import "time"

// WeekStart returns the most recent Monday 00:00:00 UTC at or before t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekBoundaries returns the half-open interval [weekStart, weekEnd) of the
// week containing t.
func WeekBoundaries(t time.Time) (time.Time, time.Time) {
	start := WeekStart(t)
	return start, start.AddDate(0, 0, 7)
}

// IsInWeek returns true if t falls within [weekStart, weekEnd).
func IsInWeek(t, weekStart, weekEnd time.Time) bool {
	t = t.UTC()
	return !t.Before(weekStart) && t.Before(weekEnd)
}

// IsInCurrentWeek returns true if t falls within the week containing now.
func IsInCurrentWeek(t, now time.Time) bool {
	weekStart, weekEnd := WeekBoundaries(now)
	return IsInWeek(t, weekStart, weekEnd)
}

// SameWeek returns true if a and b fall within the same week.
func SameWeek(a, b time.Time) bool {
	return WeekStart(a).Equal(WeekStart(b))
}

// NextResetAt returns the next Monday 00:00:00 UTC strictly after now. When now
// is exactly a week boundary the following Monday is returned, so that a reset
// running at the boundary never schedules itself for the instant it ran.
func NextResetAt(now time.Time) time.Time {
	return WeekStart(now).AddDate(0, 0, 7)
}
