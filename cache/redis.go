package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RedisCache struct {
	client *redis.Client
	logger logrus.FieldLogger
}

func NewRedisCache(client *redis.Client, logger logrus.FieldLogger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.logger.WithField("key", key).Debug("Cache hit")
		return data, true
	}
	if err != redis.Nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis GET error")
	}
	return nil, false
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to cache response")
	}
}

func (c *RedisCache) Generation(ctx context.Context) (uint64, bool) {
	gen, err := c.client.Get(ctx, generationKey).Uint64()
	switch {
	case err == nil:
		return gen, true
	case err == redis.Nil:
		return 0, true
	default:
		c.logger.WithError(err).Warn("Redis generation read failed, bypassing cache")
		return 0, false
	}
}

// Invalidate bumps the generation, which alone retires every cached read,
// then deletes the matching keys so they do not linger until their TTL.
func (c *RedisCache) Invalidate(ctx context.Context, prefixes ...string) {
	const scanCount = 100

	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.logger.WithError(err).Error("Redis generation bump failed")
	}

	var keysToDelete []string
	for _, prefix := range prefixes {
		pattern := prefix + "*"
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, pattern, scanCount).Result()
			if err != nil {
				c.logger.WithError(err).WithField("pattern", pattern).Error("Redis SCAN failed")
				break
			}
			keysToDelete = append(keysToDelete, keys...)
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WithError(err).Errorf("Error deleting %d cache keys", len(keysToDelete))
		return
	}
	c.logger.Debugf("Cache invalidated, %d keys deleted", len(keysToDelete))
}
