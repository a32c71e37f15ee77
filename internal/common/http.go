package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the originating client address for rate limiting. The
// register terminals sit behind a reverse proxy, so X-Forwarded-For is
// consulted first, taking the leftmost parseable address. Chi's RealIP
// middleware normally rewrites RemoteAddr before this runs; the header
// checks cover handlers invoked outside that chain.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, entry := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		candidate := strings.TrimSpace(entry)
		if candidate == "" {
			continue
		}
		if net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
