package models

import "time"

// LeaveCategory classifies a leave request for accounting and statistics.
type LeaveCategory string

const (
	LeaveSick       LeaveCategory = "sick"
	LeavePersonal   LeaveCategory = "personal"
	LeaveVacation   LeaveCategory = "vacation"
	LeaveMaternity  LeaveCategory = "maternity"
	LeaveOrdination LeaveCategory = "ordination"
	LeaveOther      LeaveCategory = "other"
)

var leaveCategories = map[LeaveCategory]bool{
	LeaveSick:       true,
	LeavePersonal:   true,
	LeaveVacation:   true,
	LeaveMaternity:  true,
	LeaveOrdination: true,
	LeaveOther:      true,
}

func (c LeaveCategory) Valid() bool {
	return leaveCategories[c]
}

// LeaveStatus is the lifecycle state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

type LeaveRequest struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employee_id"`
	Category   LeaveCategory `json:"category"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
	HalfDay    bool          `json:"half_day"`
	Hours      float64       `json:"hours"` // 0 means the request is not hour-based
	Reason     string        `json:"reason"`
	Status     LeaveStatus   `json:"status"`
	TotalDays  float64       `json:"total_days"` // Derived, never client-supplied
	ApproverID *string       `json:"approver_id,omitempty"`
	DecidedAt  *time.Time    `json:"decided_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// LeaveRequestUpdate enumerates the mutable fields of a pending request.
// Any change to the range, half-day flag, or hours forces a TotalDays
// recomputation in the service layer.
type LeaveRequestUpdate struct {
	Category  *LeaveCategory
	StartDate *time.Time
	EndDate   *time.Time
	HalfDay   *bool
	Hours     *float64
	Reason    *string
}

// TouchesAccounting reports whether the update changes any input of the
// chargeable-day computation.
func (u *LeaveRequestUpdate) TouchesAccounting() bool {
	return u.StartDate != nil || u.EndDate != nil || u.HalfDay != nil || u.Hours != nil
}
