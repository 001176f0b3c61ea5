package models

import "github.com/golang-jwt/jwt/v5"

type TokenClaims struct {
	Type       string `json:"type"` // "access" or "refresh"
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
