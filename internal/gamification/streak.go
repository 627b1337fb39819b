package gamification

import "time"

// StreakStep is the outcome of recording activity against a streak.
type StreakStep struct {
	Days    int
	Changed bool
	Broken  bool
}

// AdvanceStreak applies one qualifying activity at now to a streak whose last
// activity was last. Calendar days are evaluated in loc. Activity dated before
// the last recorded day (clock skew) leaves the streak untouched.
func AdvanceStreak(current int, last *time.Time, now time.Time, loc *time.Location) StreakStep {
	if last == nil || current <= 0 {
		return StreakStep{Days: 1, Changed: current != 1}
	}

	gap := CalendarDaysBetween(*last, now, loc)
	switch {
	case gap <= 0:
		return StreakStep{Days: current}
	case gap == 1:
		return StreakStep{Days: current + 1, Changed: true}
	default:
		return StreakStep{Days: 1, Changed: current != 1, Broken: true}
	}
}

// CalendarDaysBetween counts calendar-day boundaries from a to b in loc.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	return int(CalendarDay(b, loc).Sub(CalendarDay(a, loc)).Hours() / 24)
}

// CalendarDay returns midnight UTC of the calendar date t falls on in loc. The
// UTC anchor keeps day arithmetic free of DST offsets.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
