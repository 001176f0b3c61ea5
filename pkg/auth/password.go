package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 14

	minPasswordLen = 8
	// bcrypt reads at most 72 bytes of input, anything past that would
	// be silently ignored
	maxPasswordLen = 72
)

// ErrWeakPassword is returned for any password policy violation. The
// message is deliberately generic; the specific failed requirement is
// never surfaced to callers.
var ErrWeakPassword = errors.New("invalid password")

// Passwords rejected outright regardless of character classes, matched
// case-insensitively
var deniedPasswords = map[string]struct{}{
	"password":     {},
	"password123":  {},
	"password123!": {},
	"passw0rd":     {},
	"12345678":     {},
	"123456789":    {},
	"qwerty123":    {},
	"letmein":      {},
	"welcome1":     {},
	"admin123":     {},
	"iloveyou":     {},
	"sunshine":     {},
	"trustno1":     {},
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword checks a plaintext password against a stored hash
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword enforces the password policy: length bounds, at
// least one character from each of the four classes, and not on the
// denylist
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return ErrWeakPassword
	}

	if _, denied := deniedPasswords[strings.ToLower(password)]; denied {
		return ErrWeakPassword
	}

	return nil
}
