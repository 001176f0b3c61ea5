// Package leavecalc computes chargeable leave-day quantities and the
// fiscal-year aggregates built on top of them. Everything here is pure:
// the same functions run at request creation (to persist TotalDays) and
// again at report time, so they must not depend on cached state or I/O.
package leavecalc

import "time"

const dateKeyLayout = "2006-01-02"

// HolidaySet is a set of calendar dates excluded from business-day
// counting. Membership ignores time-of-day.
type HolidaySet map[string]struct{}

// NewHolidaySet builds a HolidaySet from holiday dates.
func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d.Format(dateKeyLayout)] = struct{}{}
	}
	return set
}

// Contains reports whether the set holds the calendar date of t.
func (s HolidaySet) Contains(t time.Time) bool {
	_, ok := s[t.Format(dateKeyLayout)]
	return ok
}

// ChargeableDays converts a leave request's raw date range and mode into
// the normalized day quantity used for accounting.
//
// Hour-based requests use a two-tier step function (<= 3 hours counts as a
// half day, anything more as a full day), not a proportional hours/8
// split. The half-day flag short-circuits the range entirely. Full-day
// requests count each weekday in [start, end] that is not a holiday.
//
// A reversed range yields 0 rather than iterating backward.
func ChargeableDays(start, end time.Time, halfDay bool, hours float64, holidays HolidaySet) float64 {
	if hours > 0 {
		if hours <= 3 {
			return 0.5
		}
		return 1
	}

	if halfDay {
		return 0.5
	}

	days := 0.0
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if holidays.Contains(d) {
			continue
		}
		days++
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
