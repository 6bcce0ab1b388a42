package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/pkg/clientip"
)

const (
	// ContactRateLimitWindow is the fixed window for contact submissions.
	ContactRateLimitWindow = 10 * time.Minute
	// ContactRateLimitMaxRequests is how many submissions an IP may make per window.
	ContactRateLimitMaxRequests = 5
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
)

// hitWindow counts one request and arms the window expiry in a single
// round trip. A counter left without a TTL is re-armed, so a key can never
// outlive its window. Returns {count, pttl}.
var hitWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// countHit records a request against key and returns the count so far in
// the current window and the time until the window resets.
func countHit(ctx context.Context, client redis.Scripter, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := hitWindow.Run(ctx, client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}

// RedisRateLimit allows max requests per window per client IP, counted in
// Redis so the limit holds across instances. Keys are scope-qualified so
// several limits can share one Redis. A nil client or any Redis error lets
// the request through.
func RedisRateLimit(client *redis.Client, ips clientip.Resolver, scope string, max int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := RateLimitKeyPrefix + scope + ":" + ips.ClientIP(r)

			n, ttl, err := countHit(ctx, client, key, window)
			if err != nil {
				// Fail open
				logger.Warn("rate limit check failed", zap.String("scope", scope), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			count := int(n)
			remaining := max - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if count > max {
				retry := int(math.Ceil(ttl.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(fmt.Sprintf(`{"success":false,"message":"Too many messages. Please try again later.","retry_after":%d}`, retry)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ContactSubmitLimit is RedisRateLimit configured for the public contact form.
func ContactSubmitLimit(client *redis.Client, ips clientip.Resolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return RedisRateLimit(client, ips, "contact", ContactRateLimitMaxRequests, ContactRateLimitWindow, logger)
}
