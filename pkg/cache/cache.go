package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// A zero TTL means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// GetOrCompute returns the cached value for key, or calls compute and stores
// its result. Cache read and write failures fall through to compute; only
// compute errors are returned.
func GetOrCompute[T any](ctx context.Context, c Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err == nil && ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	}

	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if data, err := json.Marshal(v); err == nil {
		_ = c.Set(ctx, key, data, ttl)
	}
	return v, nil
}

// Invalidate removes the given keys.
func Invalidate(ctx context.Context, c Cache, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}
