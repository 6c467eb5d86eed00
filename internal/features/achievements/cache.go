// Package achievements: cache.go keeps the catalog in Redis.
// The catalog changes only on seeding and AddAchievement, both of which
// invalidate the key.
package achievements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const catalogCacheKey = "engagement:achievements:catalog"

// RedisCache stores the catalog as one JSON value.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache creates a catalog cache with the given TTL.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached catalog. ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context) ([]Achievement, bool, error) {
	raw, err := c.client.Get(ctx, catalogCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read catalog cache: %w", err)
	}

	var catalog []Achievement
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, false, fmt.Errorf("decode catalog cache: %w", err)
	}
	return catalog, true, nil
}

// Set replaces the cached catalog.
func (c *RedisCache) Set(ctx context.Context, catalog []Achievement) error {
	raw, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("encode catalog cache: %w", err)
	}
	if err := c.client.Set(ctx, catalogCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write catalog cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached catalog.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}
