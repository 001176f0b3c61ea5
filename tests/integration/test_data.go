package integration

import (
	"fmt"
	"time"
)

// TestEmployee generates unique test employee credentials using timestamp
func TestEmployee(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123!"
	return
}

// Date builds a midnight-UTC date, the normalization the leave tables use
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
