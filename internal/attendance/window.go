package attendance

import "time"

// Check-in is permitted on weekdays between 07:00:00 and 08:30:00 inclusive,
// expressed as wall-clock offsets from midnight.
const (
	windowOpen  = 7 * time.Hour
	windowClose = 8*time.Hour + 30*time.Minute
)

// validateWindow runs the weekday and time-of-day gates against a single
// captured instant so the two checks can never straddle a boundary flip.
func validateWindow(now time.Time) error {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return ErrWeekend
	}
	offset := timeOfDay(now)
	if offset < windowOpen || offset > windowClose {
		return ErrOutsideWindow
	}
	return nil
}

// timeOfDay folds the wall-clock components into an offset from midnight.
// Subtracting the day's start instant would drift by the shift amount on
// DST transition days.
func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayBounds returns the inclusive calendar-day interval
// [00:00:00.000, 23:59:59.999] around t in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := dayStart(t)
	return start, start.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// monthBounds returns the inclusive range covering the whole month in loc.
// time.Date normalizes the rollover, so leap Februaries come out right.
func monthBounds(year, month int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Millisecond)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
