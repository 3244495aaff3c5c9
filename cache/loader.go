package cache

import (
	"errors"
	"time"

	extctx "github.com/indexdata/crosslink/econtent/common"
	"golang.org/x/sync/singleflight"
)

// LoadFunc fetches a fresh value. Values are stored only when store is true.
type LoadFunc func() (value []byte, store bool, err error)

// Loader reads through a Cache and collapses concurrent misses of the same key into a
// single load. Cache failures are logged and treated as misses.
type Loader struct {
	Cache Cache
	group singleflight.Group
}

func NewLoader(cache Cache) *Loader {
	return &Loader{Cache: cache}
}

// GetOrLoad returns the cached value for key unless reload is set or the key is absent,
// in which case load is called and its value cached for ttl.
func (l *Loader) GetOrLoad(ctx extctx.ExtendedContext, key string, ttl time.Duration, reload bool, load LoadFunc) ([]byte, error) {
	if !reload {
		if val, ok := l.get(ctx, key); ok {
			return val, nil
		}
	}
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		val, store, err := load()
		if err != nil {
			return nil, err
		}
		if store {
			if err := l.Cache.Set(ctx, key, val, ttl); err != nil {
				ctx.Logger().Warn("cache set failed", "key", key, "error", err)
			}
		}
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (l *Loader) get(ctx extctx.ExtendedContext, key string) ([]byte, bool) {
	val, err := l.Cache.Get(ctx, key)
	if err == nil {
		return val, true
	}
	if !errors.Is(err, ErrMiss) {
		ctx.Logger().Warn("cache get failed", "key", key, "error", err)
	}
	return nil, false
}

// Invalidate deletes keys, logging instead of returning a failure.
func (l *Loader) Invalidate(ctx extctx.ExtendedContext, keys ...string) {
	if err := l.Cache.Delete(ctx, keys...); err != nil {
		ctx.Logger().Warn("cache delete failed", "keys", keys, "error", err)
	}
}
