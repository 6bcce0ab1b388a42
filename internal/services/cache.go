package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL applies when Set is called with a non-positive TTL.
	DefaultCacheTTL = 10 * time.Minute
	// MaxCacheTTL caps any requested TTL.
	MaxCacheTTL = 12 * time.Hour

	generationSuffix = ":gen"
)

// setIfGeneration writes KEYS[1] only while the generation counter at
// KEYS[2] still holds ARGV[1] (a missing counter reads as 0).
var setIfGeneration = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// CacheService stores JSON values in Redis. A CacheService with a nil
// client is a no-op: every Get misses and no write is stored.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Get retrieves a value from cache. A miss is reported as (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	val, err := c.client.Get(ctx, CacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Generation returns the invalidation counter of key. Read it before
// computing a value and hand it to SetIfGeneration.
func (c *CacheService) Generation(ctx context.Context, key string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	gen, err := c.client.Get(ctx, CacheKeyPrefix+key+generationSuffix).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetIfGeneration stores value only when key has not been invalidated since
// gen was read. It reports whether the value was stored.
func (c *CacheService) SetIfGeneration(ctx context.Context, key string, gen int64, value any, ttl time.Duration) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	keys := []string{CacheKeyPrefix + key, CacheKeyPrefix + key + generationSuffix}
	n, err := setIfGeneration.Run(ctx, c.client, keys, strconv.FormatInt(gen, 10), data, clampTTL(ttl).Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Invalidate bumps the generation of key and drops its value in one
// transaction, so fills computed before the bump cannot be stored.
func (c *CacheService) Invalidate(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, CacheKeyPrefix+key+generationSuffix)
		pipe.Del(ctx, CacheKeyPrefix+key)
		return nil
	})
	return err
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultCacheTTL
	}
	if ttl > MaxCacheTTL {
		return MaxCacheTTL
	}
	return ttl
}
