package leavecalc

import "time"

// FiscalYear is the October 1 – September 30 accounting period used to
// bucket leave requests for reporting.
type FiscalYear struct {
	Start time.Time // October 1, start of day
	End   time.Time // September 30 of the following year, end of day
}

// FiscalYearRange returns the fiscal year containing asOf. Dates in
// October through December belong to the fiscal year starting that
// October; January through September belong to the one started the
// previous October.
func FiscalYearRange(asOf time.Time) FiscalYear {
	startYear := asOf.Year()
	if asOf.Month() < time.October {
		startYear--
	}

	return FiscalYear{
		Start: time.Date(startYear, time.October, 1, 0, 0, 0, 0, asOf.Location()),
		End:   time.Date(startYear+1, time.September, 30, 23, 59, 59, 0, asOf.Location()),
	}
}

// Contains reports whether t falls inside the fiscal year, inclusive at
// both ends.
func (fy FiscalYear) Contains(t time.Time) bool {
	return !t.Before(fy.Start) && !t.After(fy.End)
}

// Months returns the 12 fiscal months in fiscal order, October first.
func (fy FiscalYear) Months() []time.Time {
	months := make([]time.Time, 0, 12)
	for i := 0; i < 12; i++ {
		months = append(months, fy.Start.AddDate(0, i, 0))
	}
	return months
}
