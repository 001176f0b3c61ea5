package leavecalc

import (
	"sort"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
)

// Bucket is one leg of the past/current/total triple shown on printed
// leave forms and approver dashboards.
type Bucket struct {
	Count int     `json:"count"`
	Days  float64 `json:"days"`
}

// TypeStats is the per-category figure set for a single request under
// review: leave already taken this fiscal year, the request itself, and
// their sum.
type TypeStats struct {
	Category models.LeaveCategory `json:"category"`
	Past     Bucket               `json:"past"`
	Current  Bucket               `json:"current"`
	Total    Bucket               `json:"total"`
}

// TypeStatistics partitions the subject's other leave requests into the
// "past" bucket and combines them with the current request's own
// contribution. Only approved and pending requests of the same category
// whose start date falls in the fiscal window count; the current request
// is excluded from "past" by identity. Day values are recomputed through
// ChargeableDays so submission-time and print-time figures cannot drift.
func TypeStatistics(current *models.LeaveRequest, others []*models.LeaveRequest, fy FiscalYear, holidays HolidaySet) TypeStats {
	stats := TypeStats{Category: current.Category}

	for _, req := range others {
		if req.ID == current.ID {
			continue
		}
		if req.Status != models.LeaveApproved && req.Status != models.LeavePending {
			continue
		}
		if req.Category != current.Category {
			continue
		}
		if !fy.Contains(req.StartDate) {
			continue
		}

		stats.Past.Count++
		stats.Past.Days += ChargeableDays(req.StartDate, req.EndDate, req.HalfDay, req.Hours, holidays)
	}

	stats.Current.Count = 1
	stats.Current.Days = ChargeableDays(current.StartDate, current.EndDate, current.HalfDay, current.Hours, holidays)

	stats.Total.Count = stats.Past.Count + stats.Current.Count
	stats.Total.Days = stats.Past.Days + stats.Current.Days

	return stats
}

// MonthlyEntry is one cell of the fiscal-year dashboard: the chargeable
// days one employee accrued in one category in one fiscal month.
type MonthlyEntry struct {
	Year       int                  `json:"year"`
	Month      time.Month           `json:"month"`
	EmployeeID string               `json:"employee_id"`
	Category   models.LeaveCategory `json:"category"`
	Days       float64              `json:"days"`
}

type monthlyKey struct {
	year       int
	month      time.Month
	employeeID string
	category   models.LeaveCategory
}

// MonthlyBuckets accumulates chargeable days per employee and category
// into the fiscal month holding each request's start date. The result is
// sparse: months with no qualifying requests for an employee contribute
// no entry, so consumers can distinguish "no leave" from "zero computed
// days". Only approved and pending requests inside the window count.
func MonthlyBuckets(requests []*models.LeaveRequest, fy FiscalYear, holidays HolidaySet) []MonthlyEntry {
	acc := make(map[monthlyKey]float64)

	for _, req := range requests {
		if req.Status != models.LeaveApproved && req.Status != models.LeavePending {
			continue
		}
		if !fy.Contains(req.StartDate) {
			continue
		}

		key := monthlyKey{
			year:       req.StartDate.Year(),
			month:      req.StartDate.Month(),
			employeeID: req.EmployeeID,
			category:   req.Category,
		}
		acc[key] += ChargeableDays(req.StartDate, req.EndDate, req.HalfDay, req.Hours, holidays)
	}

	entries := make([]MonthlyEntry, 0, len(acc))
	for key, days := range acc {
		entries = append(entries, MonthlyEntry{
			Year:       key.year,
			Month:      key.month,
			EmployeeID: key.employeeID,
			Category:   key.category,
			Days:       days,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Year != entries[j].Year {
			return entries[i].Year < entries[j].Year
		}
		if entries[i].Month != entries[j].Month {
			return entries[i].Month < entries[j].Month
		}
		if entries[i].EmployeeID != entries[j].EmployeeID {
			return entries[i].EmployeeID < entries[j].EmployeeID
		}
		return entries[i].Category < entries[j].Category
	})

	return entries
}
