package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPConfig controls which upstream proxies may assert a client address
// through forwarding headers
type IPConfig struct {
	TrustedProxies []string // CIDR ranges
}

// ExtractClientIP resolves the client address for a request.
//
// Forwarding headers are honored only when the direct peer is inside a
// trusted proxy range; otherwise any client could pick its own address
// with a single header. X-Forwarded-For wins over X-Real-IP, taking the
// first parseable entry in the chain. Everything else falls back to
// RemoteAddr.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := remoteHost(r)

	if config != nil && isTrustedProxy(remoteIP, config.TrustedProxies) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, entry := range strings.Split(xff, ",") {
				entry = strings.TrimSpace(entry)
				if _, err := netip.ParseAddr(entry); err == nil {
					return entry
				}
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if _, err := netip.ParseAddr(xri); err == nil {
				return xri
			}
		}
	}

	return remoteIP
}

// remoteHost strips the port from RemoteAddr when one is present
func remoteHost(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	for _, cidr := range trustedProxies {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			// Misconfigured ranges are skipped rather than trusted
			continue
		}
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}
