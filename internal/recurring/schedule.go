// Package recurring materializes recurring transaction templates into
// committed transactions when their due dates pass.
package recurring

import (
	"time"

	"github.com/siamakdehbokri-hub/siaflowtest/internal/model"
)

// AddWeeks returns the date exactly 7n calendar days after d.
func AddWeeks(d model.Date, n int) model.Date {
	return d.AddDays(7 * n)
}

// AddMonths returns the same day-of-month n months after d, clamped to
// the last day of the target month when that day does not exist there
// (Jan 31 + 1 month = Feb 28 or 29).
//
// The day is taken from d itself, not from when the schedule was
// created: once an occurrence lands on a clamped day, later advances
// compute from the clamped day. A template anchored on the 31st drifts
// to the 28th/29th after the first short month and stays there.
func AddMonths(d model.Date, n int) model.Date {
	year, month, day := d.Date()
	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return model.NewDate(target.Year(), target.Month(), day)
}

// Advance moves a due date forward by one cadence period.
func Advance(d model.Date, cadence model.Cadence) model.Date {
	if cadence == model.CadenceWeekly {
		return AddWeeks(d, 1)
	}
	return AddMonths(d, 1)
}

// daysInMonth returns the number of days in the given month. Day zero
// of the following month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
