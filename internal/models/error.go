package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountSuspended = errors.New("account is suspended")
	ErrAccountDisabled  = errors.New("account is disabled")
	ErrTooManyAttempts  = errors.New("too many failed login attempts")
	ErrTOTPRequired     = errors.New("totp code required")

	// Leave workflow errors
	ErrAlreadyDecided = errors.New("leave request has already been decided")
)
