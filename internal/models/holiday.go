package models

import "time"

// Holiday is a calendar date excluded from business-day counting. Holidays
// carry no leave semantics of their own; they are purely subtractive.
type Holiday struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"` // Calendar date; time-of-day is ignored
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
