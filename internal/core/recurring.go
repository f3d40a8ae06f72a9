package core

import "time"

// NextOccurrence returns the first date on or after from on which a
// recurring expense falls. A day past the end of a month clamps to the last
// day, so day 31 lands on Feb 28/29. The result is informational only:
// recurring definitions are never turned into transactions.
func NextOccurrence(r RecurringExpense, from Date) Date {
	candidate := clampDay(from.Year(), from.Month(), r.DayOfMonth)
	if candidate.Before(from.Time) {
		next := AddMonths(NewDate(from.Year(), from.Month(), 1), 1)
		candidate = clampDay(next.Year(), next.Month(), r.DayOfMonth)
	}
	return candidate
}

func clampDay(year int, month time.Month, day int) Date {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}
