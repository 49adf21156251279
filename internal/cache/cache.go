// Package cache stores derived values in Redis. A Cache built without a
// client degrades to a no-op so callers never depend on Redis being up.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheUnavailable = errors.New("cache not available")
	ErrCacheMiss        = errors.New("cache miss")
)

// ProfileTTL bounds how stale a cached analysis profile may be.
const ProfileTTL = 5 * time.Minute

// Cache is a prefixed JSON cache over a Redis client.
type Cache struct {
	client *redis.Client
	prefix string
}

// New returns a cache using client. client may be nil.
func New(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Open connects to the Redis instance at url (redis://host:port/db) and
// verifies it with a ping. An empty url yields a disabled cache.
func Open(ctx context.Context, url, prefix string) (*Cache, error) {
	if url == "" {
		return New(nil, prefix), nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, prefix), nil
}

// Enabled reports whether the cache is backed by a client.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get decodes the value stored at key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if !c.Enabled() {
		return ErrCacheUnavailable
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal: %w", err)
	}
	return nil
}

// Set stores value at key as JSON for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes keys. Missing keys are ignored.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.client.Del(ctx, full...).Err()
}

// InvalidatePattern removes every key matching pattern using SCAN.
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) error {
	if !c.Enabled() {
		return nil
	}
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := c.client.Scan(ctx, cursor, c.key(pattern), 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// ProfileKey is the key of the analysis profile for a student and course.
// An empty course means all courses.
func ProfileKey(studentID, courseID string) string {
	if courseID == "" {
		courseID = "all"
	}
	return fmt.Sprintf("profile:%s:%s", studentID, courseID)
}

// StudentPattern matches every profile key of a student.
func StudentPattern(studentID string) string {
	return fmt.Sprintf("profile:%s:*", studentID)
}
