package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// envelope wraps a cached payload with its own expiry. The expiry
// inside the envelope is authoritative; the redis key TTL is hygiene
// only.
type envelope[T any] struct {
	Payload   T         `json:"payload"`
	FetchedAt time.Time `json:"fetchedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CacheRepo is a short-lived cache for a single slowly-changing
// collection stored under a fixed key. An entry is usable only while
// now < expiresAt; expired or undecodable entries are removed on read
// and reported as a miss.
type CacheRepo[T any] struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
	now    func() time.Time
}

func NewCacheRepo[T any](client *goredis.Client, key string, ttl time.Duration) *CacheRepo[T] {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheRepo[T]{
		client: client,
		key:    key,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the cached payload and whether the entry was fresh.
func (c *CacheRepo[T]) Get(ctx context.Context) (T, bool, error) {
	var zero T
	if c.client == nil {
		return zero, false, fmt.Errorf("redis client is nil")
	}

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("get cache entry: %w", err)
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		_ = c.client.Del(ctx, c.key).Err()
		return zero, false, nil
	}

	if !c.now().Before(env.ExpiresAt) {
		if err := c.client.Del(ctx, c.key).Err(); err != nil {
			return zero, false, fmt.Errorf("delete expired cache entry: %w", err)
		}
		return zero, false, nil
	}

	return env.Payload, true, nil
}

// Set overwrites the entry with a freshly computed expiry.
func (c *CacheRepo[T]) Set(ctx context.Context, payload T) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	now := c.now()
	raw, err := json.Marshal(envelope[T]{
		Payload:   payload,
		FetchedAt: now,
		ExpiresAt: now.Add(c.ttl),
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}

	return nil
}

func (c *CacheRepo[T]) Clear(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("clear cache entry: %w", err)
	}
	return nil
}
