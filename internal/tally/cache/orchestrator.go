package cache

import (
	"context"
	"time"
)

// Orchestrator implements the cache-aside pattern over a Cache: reads
// populate on miss, writes invalidate the whole tenant prefix. It never
// upgrades to locking; the staleness window of a lost invalidation race is
// bounded by the entry TTL.
type Orchestrator struct {
	Cache *Cache
	TTL   time.Duration
}

func NewOrchestrator(c *Cache) *Orchestrator {
	return &Orchestrator{Cache: c, TTL: DefaultTTL}
}

// ReadThrough returns the cached snapshot under key if present, otherwise
// computes it from the authoritative store, caches it best-effort, and
// returns it. A failed cache write does not fail the read.
func ReadThrough[T any](ctx context.Context, o *Orchestrator, key string, compute func(context.Context) (T, error)) (T, error) {
	var cached T
	if o.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	computed, err := compute(ctx)
	if err != nil {
		return computed, err
	}

	o.Cache.SetJSON(ctx, key, computed, o.TTL)
	return computed, nil
}

// InvalidateOnWrite runs mutate against the store first and invalidates the
// tenant's cache prefix only after it returns successfully. The ordering is
// load-bearing: invalidating before the commit would let a concurrent reader
// repopulate the cache with pre-mutation data that then survives until the
// next write or TTL expiry. If mutate fails, the cache is left untouched and
// still reflects only committed state.
func (o *Orchestrator) InvalidateOnWrite(ctx context.Context, tenantID string, mutate func(context.Context) error) error {
	if err := mutate(ctx); err != nil {
		return err
	}

	o.Cache.InvalidatePrefix(ctx, ExpensesKey(tenantID))
	return nil
}
