package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	pkghttp "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/http"
)

func TestExtractClientIP(t *testing.T) {
	internalProxies := []string{"10.0.0.0/8", "127.0.0.1/32"}

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		config     *pkghttp.IPConfig
		expected   string
	}{
		{
			name:       "direct connection ignores forwarding headers",
			remoteAddr: "203.0.113.10:54321",
			headers: map[string]string{
				"X-Forwarded-For": "1.2.3.4, 5.6.7.8",
				"X-Real-IP":       "192.168.1.1",
			},
			config:   &pkghttp.IPConfig{TrustedProxies: internalProxies},
			expected: "203.0.113.10",
		},
		{
			name:       "trusted proxy honors x-forwarded-for",
			remoteAddr: "10.0.0.5:54321",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.42, 10.0.0.5",
				"X-Real-IP":       "198.51.100.1",
			},
			config:   &pkghttp.IPConfig{TrustedProxies: internalProxies},
			expected: "203.0.113.42",
		},
		{
			name:       "trusted proxy falls through to x-real-ip",
			remoteAddr: "10.0.0.5:54321",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-address",
				"X-Real-IP":       "203.0.113.42",
			},
			config:   &pkghttp.IPConfig{TrustedProxies: internalProxies},
			expected: "203.0.113.42",
		},
		{
			name:       "ipv6 proxy and client",
			remoteAddr: "[::1]:54321",
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::1"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"::1/128"}},
			expected:   "2001:db8::1",
		},
		{
			name:       "nil config trusts nobody",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			config:     nil,
			expected:   "203.0.113.10",
		},
		{
			name:       "empty proxy list trusts nobody",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{}},
			expected:   "203.0.113.10",
		},
		{
			name:       "invalid cidr ranges are not trusted",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"invalid-cidr", "also-bad"}},
			expected:   "203.0.113.10",
		},
		{
			name:       "first entry of forwarding chain wins",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.42, 203.0.113.43, 10.0.0.5"},
			config:     &pkghttp.IPConfig{TrustedProxies: internalProxies},
			expected:   "203.0.113.42",
		},
		{
			name:       "localhost claim from untrusted peer is ignored",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "127.0.0.1, 203.0.113.10"},
			config:     &pkghttp.IPConfig{TrustedProxies: internalProxies},
			expected:   "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, val := range tt.headers {
				req.Header.Set(key, val)
			}

			assert.Equal(t, tt.expected, pkghttp.ExtractClientIP(req, tt.config))
		})
	}
}
