package logger

import "strings"

// SanitizedEmail masks an address for log output, keeping just enough
// shape to correlate repeated lines: the first character of the local
// part and the TLD survive, everything else is starred out.
func SanitizedEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "[invalid-email]"
	}

	if len(local) > 1 {
		local = string(local[0]) + strings.Repeat("*", len(local)-1)
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return local + "@" + domain
}

// Query parameter names that may carry credentials or personal data.
// Substring match on purpose: "access_token", "totp_code" and friends
// should all trip it.
var sensitiveParams = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"apikey",
	"email",
	"auth",
	"code",
}

// SanitizeQueryString reports whether a raw query string carries a
// credential-like parameter; callers drop the whole string from the
// log line rather than trying to redact individual values
func SanitizeQueryString(rawQuery string) bool {
	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
