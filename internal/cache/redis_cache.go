// Package cache holds the read-through cache in front of the list endpoints.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskportal/pkg/metrics"
)

const keyPrefix = "portal:"

// Keys of the cached list responses.
const (
	KeyEmployees = "employees:all"
	KeyTasks     = "tasks:all"
)

type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, logger: logger}
}

// GetJSON decodes the cached value for key into dst. found is false on a
// miss. Redis errors are logged and reported as a miss, so an unavailable
// cache never fails a request.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.IncrementCacheLookup(key, "miss")
		return false
	}
	if err != nil {
		metrics.IncrementCacheLookup(key, "error")
		c.logger.Warn("Redis cache read failed, falling back to storage",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.IncrementCacheLookup(key, "error")
		c.logger.Warn("Redis cache entry undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	metrics.IncrementCacheLookup(key, "hit")
	return true
}

// Generation returns the invalidation counter of key. ok is false when the
// counter cannot be read; the caller must then skip the fill.
func (c *RedisCache) Generation(ctx context.Context, key string) (int64, bool) {
	gen, err := c.rdb.Get(ctx, genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		c.logger.Warn("Redis cache generation read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// setIfGeneration writes the value only while the counter still holds the
// generation observed before the storage read.
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[1]) or '0'
if cur ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// SetJSON stores v under key if no Delete ran since gen was read. A list read
// that raced with a write is dropped instead of outliving the invalidation.
func (c *RedisCache) SetJSON(ctx context.Context, key string, gen int64, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Redis cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	stored, err := setIfGeneration.Run(ctx, c.rdb,
		[]string{genKey(key), keyPrefix + key},
		strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.logger.Warn("Redis cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	if stored == 0 {
		metrics.IncrementCacheLookup(key, "stale_fill")
		c.logger.Debug("Skipped stale cache fill", zap.String("key", key), zap.Int64("generation", gen))
	}
}

// Delete bumps the generation of every key and drops the cached values.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, genKey(k))
			pipe.Del(ctx, keyPrefix+k)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("Redis cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func genKey(key string) string {
	return keyPrefix + "gen:" + key
}
