package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Cache is a shared key-value store with per-entry expiry. Get returns ErrMiss for
// absent or expired keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes all keys in one operation; absent keys are ignored
	Delete(ctx context.Context, keys ...string) error
}
