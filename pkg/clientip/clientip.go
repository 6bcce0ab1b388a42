// Package clientip resolves the address of the visitor behind a request.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Resolver picks the client IP. With TrustProxy set, the left-most valid
// X-Forwarded-For entry (then X-Real-IP) wins; otherwise only RemoteAddr
// is used, so a direct client cannot spoof its address.
type Resolver struct {
	TrustProxy bool
}

func (res Resolver) ClientIP(r *http.Request) string {
	if res.TrustProxy {
		if ip := forwardedFor(r.Header.Get("X-Forwarded-For")); ip != "" {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}
	return RealClientIP(r)
}

// RealClientIP returns the host part of r.RemoteAddr.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}

func forwardedFor(header string) string {
	for _, part := range strings.Split(header, ",") {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
