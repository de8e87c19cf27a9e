package utils

import "time"

// Billing periods are inclusive calendar-date windows anchored to month
// boundaries. All math here works on date-truncated values in UTC so that a
// period stored as 2025-03-01..2025-03-31 compares the same way regardless of
// the server timezone.

func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FirstDayOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func LastDayOfMonth(t time.Time) time.Time {
	return FirstDayOfMonth(t).AddDate(0, 1, -1)
}

// CurrentMonthPeriod returns the calendar-month window containing t,
// the default period for free-tier subscriptions.
func CurrentMonthPeriod(t time.Time) (start, end time.Time) {
	return FirstDayOfMonth(t), LastDayOfMonth(t)
}

// NextPeriod computes the billing window immediately following an expired
// period end: the whole calendar month after the month containing periodEnd.
// Rollover is forward-only; callers never pass a future periodEnd.
func NextPeriod(periodEnd time.Time) (start, end time.Time) {
	start = FirstDayOfMonth(DateOnly(periodEnd).AddDate(0, 0, 1))
	end = LastDayOfMonth(start)
	return start, end
}
