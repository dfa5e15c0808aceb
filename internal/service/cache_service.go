package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisGradeCache backs the final-grade cache with Redis. Failures degrade
// to cache misses; the store stays the source of truth.
type RedisGradeCache struct {
	client  *redis.Client
	logger  *zap.Logger
	metrics *MetricsService
}

// NewRedisGradeCache constructs the cache adapter.
func NewRedisGradeCache(client *redis.Client, logger *zap.Logger, metrics *MetricsService) *RedisGradeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisGradeCache{client: client, logger: logger, metrics: metrics}
}

// Get returns the cached payload and whether the lookup hit.
func (c *RedisGradeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		c.metrics.CountCache(false)
		return nil, false
	}
	c.metrics.CountCache(true)
	return raw, true
}

// Set stores the payload with the given TTL.
func (c *RedisGradeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Del drops the cached payload, called after every grade write.
func (c *RedisGradeCache) Del(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache del failed", zap.String("key", key), zap.Error(err))
	}
}
