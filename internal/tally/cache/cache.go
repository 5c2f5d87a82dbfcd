// Package cache wraps the Redis client behind a soft-fail contract: the
// cache is never a source of truth, so any backend error degrades to a miss
// (or a false return) and a log line, never an error to the caller.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/quietloops/tally/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is the lifetime of a cached tenant snapshot. It is the
	// ceiling on staleness when an invalidation race is lost.
	DefaultTTL = 300 * time.Second

	// opTimeout bounds every cache operation. A slow backend degrades to
	// a miss rather than stalling the request.
	opTimeout = 2 * time.Second

	// scanBatch is the COUNT hint for SCAN and the deletion batch size.
	scanBatch = 100

	// maxScanIterations bounds the SCAN loop. A cursor that never returns
	// to zero within this many rounds is treated as a backend fault.
	maxScanIterations = 100
)

// ExpensesKey builds the cache key for a tenant's expense snapshot. The
// tenant id prefix is what makes invalidation and isolation prefix-scoped.
func ExpensesKey(userID string) string {
	return "expenses:" + userID
}

type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// GetJSON loads and unmarshals the value at key into dest. Returns false on
// a miss or on any backend or decode error.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.rdb.Get(opCtx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slogx.FromContext(ctx).Warn("cache get failed", "key", key, "err", err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		slogx.FromContext(ctx).Warn("cache entry undecodable", "key", key, "err", err)
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key with the given TTL. Returns
// false on failure; the caller continues as if the write never happened.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		slogx.FromContext(ctx).Warn("cache value unencodable", "key", key, "err", err)
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.rdb.Set(opCtx, key, raw, ttl).Err(); err != nil {
		slogx.FromContext(ctx).Warn("cache set failed", "key", key, "err", err)
		return false
	}
	return true
}

// Delete removes a single key. Soft-fail like everything else here.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.rdb.Del(opCtx, key).Err(); err != nil {
		slogx.FromContext(ctx).Warn("cache delete failed", "key", key, "err", err)
		return false
	}
	return true
}

// InvalidatePrefix deletes every key under prefix using incremental SCAN
// with batched deletions, for backends that cannot enumerate matches
// atomically. Idempotent, and a correct no-op when nothing matches. The loop
// is bounded by maxScanIterations; on exhaustion it fails soft and logs.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) bool {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	match := prefix + "*"
	var cursor uint64

	for i := 0; i < maxScanIterations; i++ {
		keys, next, err := c.rdb.Scan(opCtx, cursor, match, scanBatch).Result()
		if err != nil {
			slogx.FromContext(ctx).Warn("cache scan failed", "prefix", prefix, "err", err)
			return false
		}

		if len(keys) > 0 {
			if err := c.rdb.Del(opCtx, keys...).Err(); err != nil {
				slogx.FromContext(ctx).Warn("cache bulk delete failed", "prefix", prefix, "err", err)
				return false
			}
		}

		cursor = next
		if cursor == 0 {
			return true
		}
	}

	slogx.FromContext(ctx).Warn("cache scan cursor never completed", "prefix", prefix, "iterations", maxScanIterations)
	return false
}

// Ping verifies the backend is reachable. Used at startup only; at request
// time an unreachable backend is just a miss.
func (c *Cache) Ping(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return c.rdb.Ping(opCtx).Err()
}
