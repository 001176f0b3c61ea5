package models

// Role is a ranked authorization level. Access checks compare ranks via
// MeetsOrExceeds instead of matching against per-endpoint allow-lists.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

var roleRanks = map[Role]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleHR:       3,
	RoleAdmin:    4,
}

// Valid reports whether the role is one of the known ranked roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// MeetsOrExceeds reports whether the role ranks at least as high as threshold.
// Unknown roles rank below every known role.
func (r Role) MeetsOrExceeds(threshold Role) bool {
	return roleRanks[r] >= roleRanks[threshold] && roleRanks[r] > 0
}
