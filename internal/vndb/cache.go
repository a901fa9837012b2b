// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vndb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache stores raw response bodies keyed by request.
//
// The cache is best-effort: the client logs and ignores its errors.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// RedisPageCache is a [PageCache] backed by Redis string keys.
type RedisPageCache struct {
	client *redis.Client
}

// NewRedisPageCache wraps an already connected client.
func NewRedisPageCache(client *redis.Client) *RedisPageCache {
	return &RedisPageCache{client: client}
}

// Get returns the cached body, or found=false on a miss.
func (cache *RedisPageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := cache.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: get %s: %w", key, err)
	}

	return body, true, nil
}

// Set stores body under key with the given expiration.
func (cache *RedisPageCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := cache.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}

	return nil
}
