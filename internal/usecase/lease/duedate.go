package lease

import "time"

// NextDueDate computes the first payment due date at activation.
//
// If the lease start date is still in the future, the due date lands in the
// start date's month aligned to dueDay, rolled forward one month when that
// day precedes the start date. Otherwise it is the next occurrence of dueDay
// strictly after now. Day-of-month is clamped to the target month's length.
func NextDueDate(start time.Time, dueDay int, now time.Time) time.Time {
	start = start.UTC()
	now = now.UTC()

	if start.After(now) {
		d := dateWithDay(start.Year(), start.Month(), dueDay)
		if d.Before(truncateToDay(start)) {
			d = dateWithDay(start.Year(), start.Month()+1, dueDay)
		}
		return d
	}

	d := dateWithDay(now.Year(), now.Month(), dueDay)
	if !d.After(now) {
		d = dateWithDay(now.Year(), now.Month()+1, dueDay)
	}
	return d
}

// dateWithDay builds a UTC date in year/month with the day clamped to the
// month's length (paymentDueDay may be 29-31). Month overflow normalizes.
func dateWithDay(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
