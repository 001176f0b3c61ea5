package models

import "time"

// Employee statuses
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDisabled  = "disabled"
)

type Employee struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Status       string // "active", "suspended", "disabled"
	DepartmentID *string
	PositionID   *string
	TOTPSecret   *string // Base32 secret, set once TOTP setup begins
	TOTPEnabled  bool    // True only after the first code has been verified
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmployeeUpdate enumerates the fields a caller may change. Each field is
// independently settable; nil means "leave unchanged".
type EmployeeUpdate struct {
	FirstName    *string
	LastName     *string
	Role         *Role
	Status       *string
	DepartmentID *string
	PositionID   *string
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Position struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
