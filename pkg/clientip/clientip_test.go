package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		remote     string
		xff        string
		realIP     string
		want       string
	}{
		{name: "remote addr", remote: "203.0.113.7:5123", want: "203.0.113.7"},
		{name: "remote without port", remote: "203.0.113.7", want: "203.0.113.7"},
		{name: "forwarded ignored when untrusted", remote: "10.0.0.1:80", xff: "198.51.100.4", want: "10.0.0.1"},
		{name: "left-most forwarded", trustProxy: true, remote: "10.0.0.1:80", xff: "198.51.100.4, 10.0.0.2", want: "198.51.100.4"},
		{name: "skips garbage", trustProxy: true, remote: "10.0.0.1:80", xff: "unknown, 198.51.100.9", want: "198.51.100.9"},
		{name: "real ip header", trustProxy: true, remote: "10.0.0.1:80", realIP: "2001:db8::1", want: "2001:db8::1"},
		{name: "falls back to remote", trustProxy: true, remote: "10.0.0.1:80", want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, Resolver{TrustProxy: tt.trustProxy}.ClientIP(r))
		})
	}
}
