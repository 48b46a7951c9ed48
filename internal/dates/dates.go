// Package dates holds calendar helpers used by dashboards and reminders.
package dates

import (
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/recurrence"
)

// InRange reports whether d falls within [from, to]. A zero bound is open.
func InRange(d, from, to model.Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// DaysUntil returns the number of days from today to d; negative when d is past.
func DaysUntil(today, d model.Date) int {
	return model.DaysBetween(today, d)
}

// AddMonths adds n months to d, clamping to the end of shorter months.
func AddMonths(d model.Date, n int) model.Date {
	return model.Date{Time: recurrence.AddMonths(d.Time, n)}
}

// AddYears adds n years to d. Feb 29 becomes Feb 28 in common years.
func AddYears(d model.Date, n int) model.Date {
	return AddMonths(d, 12*n)
}

// IsBirthdayToday reports whether birth has the same day and month as today.
func IsBirthdayToday(birth, today model.Date) bool {
	if birth.IsZero() {
		return false
	}
	return birth.Month() == today.Month() && birth.Day() == today.Day()
}

// WeekBounds returns the Sunday and Saturday of the week containing d.
func WeekBounds(d model.Date) (model.Date, model.Date) {
	start := d.AddDays(-int(d.Weekday()))
	return start, start.AddDays(6)
}

// IsBirthdayThisWeek reports whether the anniversary of birth falls in the
// Sunday-to-Saturday week containing today. Feb 29 birthdays are observed
// on Feb 28 in common years.
func IsBirthdayThisWeek(birth, today model.Date) bool {
	if birth.IsZero() {
		return false
	}
	start, end := WeekBounds(today)
	// The week can straddle New Year, so try both years it touches.
	for _, year := range []int{start.Year(), end.Year()} {
		if InRange(anniversary(birth, year), start, end) {
			return true
		}
	}
	return false
}

func anniversary(birth model.Date, year int) model.Date {
	return AddYears(birth, year-birth.Year())
}
