package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/portfolio-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck returns 403 when r.Host does not match allowedHost (e.g. api.example.com).
// allowedHost should be the bare hostname without scheme or port.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), strings.TrimSpace(allowedHost)) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// limiterPool hands out one token bucket per client IP and forgets idle ones.
type limiterPool struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	limit      rate.Limit
	burst      int
	cleanupRun bool
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	return &limiterPool{entries: make(map[string]*limiterEntry), limit: limit, burst: burst}
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startCleanupOnce()
	e, ok := p.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (p *limiterPool) startCleanupOnce() {
	if p.cleanupRun {
		return
	}
	p.cleanupRun = true
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			p.mu.Lock()
			now := time.Now()
			for ip, e := range p.entries {
				if now.Sub(e.lastUse) > limiterTTL {
					delete(p.entries, ip)
				}
			}
			p.mu.Unlock()
		}
	}()
}

// --- Global rate limiting (per-IP, 5/s, burst 20) ---

const (
	globalRateLimitRPS   = 5
	globalRateLimitBurst = 20
)

// GlobalRateLimit limits each client IP. Returns 429 when exceeded.
func GlobalRateLimit(ips clientip.Resolver) func(http.Handler) http.Handler {
	pool := newLimiterPool(rate.Limit(globalRateLimitRPS), globalRateLimitBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !pool.get(ips.ClientIP(r)).Allow() {
				writeTooMany(w, "Too many requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// --- Credential route rate limiting (1 req/5s, burst 3) ---

const (
	loginRateLimitEvery = 5 * time.Second
	loginRateLimitBurst = 3
)

var loginPaths = map[string]bool{
	"/api/portfolio/admin-login":     true,
	"/api/portfolio/forgot-password": true,
	"/api/portfolio/reset-password":  true,
}

// LoginRateLimit applies a stricter limit to login and password reset
// routes only. Use after GlobalRateLimit.
func LoginRateLimit(ips clientip.Resolver) func(http.Handler) http.Handler {
	pool := newLimiterPool(rate.Every(loginRateLimitEvery), loginRateLimitBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !loginPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !pool.get(ips.ClientIP(r)).Allow() {
				writeTooMany(w, "Too many login attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooMany(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity(allowedHost string, ips clientip.Resolver) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
		GlobalRateLimit(ips),
		LoginRateLimit(ips),
	}
}
