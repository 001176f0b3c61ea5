package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleMeetsOrExceeds_Ordering(t *testing.T) {
	tests := []struct {
		name      string
		role      Role
		threshold Role
		want      bool
	}{
		{"employee below manager", RoleEmployee, RoleManager, false},
		{"manager meets manager", RoleManager, RoleManager, true},
		{"hr exceeds manager", RoleHR, RoleManager, true},
		{"admin exceeds hr", RoleAdmin, RoleHR, true},
		{"manager below hr", RoleManager, RoleHR, false},
		{"employee meets employee", RoleEmployee, RoleEmployee, true},
		{"admin meets employee", RoleAdmin, RoleEmployee, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.MeetsOrExceeds(tt.threshold))
		})
	}
}

func TestRoleMeetsOrExceeds_UnknownRole(t *testing.T) {
	// Unknown roles must never pass a rank check
	assert.False(t, Role("superuser").MeetsOrExceeds(RoleEmployee))
	assert.False(t, Role("").MeetsOrExceeds(RoleEmployee))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleEmployee.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
}
