// Package cache is a Redis-backed cache for resolved bracket code references.
// Entries are keyed by target content id with a short TTL, so renderers doing
// repeated resolves of the same targets skip the live store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	TTLResolved = 1 * time.Minute // resolved references; content changes also evict eagerly
	TTLDefault  = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixResolved = "resolved:"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache miss")

// Service cache operations used by the resolver
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetResolved(ctx context.Context, contentID string, dest interface{}) error
	SetResolved(ctx context.Context, contentID string, value interface{}) error
	DeleteResolved(ctx context.Context, contentID string) error
}

type redisCache struct {
	client *redis.Client
}

// New creates a Redis cache service
func New(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) GetResolved(ctx context.Context, contentID string, dest interface{}) error {
	return c.Get(ctx, resolvedKey(contentID), dest)
}

func (c *redisCache) SetResolved(ctx context.Context, contentID string, value interface{}) error {
	return c.Set(ctx, resolvedKey(contentID), value, TTLResolved)
}

func (c *redisCache) DeleteResolved(ctx context.Context, contentID string) error {
	return c.Delete(ctx, resolvedKey(contentID))
}

func resolvedKey(contentID string) string {
	return fmt.Sprintf("%s%s", PrefixResolved, contentID)
}
