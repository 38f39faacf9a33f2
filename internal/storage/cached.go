package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached wraps a backing Storage with a read-through in-process cache.
// Writes go to the backing store first and only update the cache on success,
// so the cache never holds a value the backend rejected.
type Cached struct {
	backing Storage
	cache   *cache.Cache
}

// NewCached returns a Cached store whose entries expire after ttl.
func NewCached(backing Storage, ttl time.Duration) *Cached {
	return &Cached{
		backing: backing,
		cache:   cache.New(ttl, 2*ttl),
	}
}

var _ Storage = (*Cached)(nil)

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.cache.Get(key); ok {
		return append([]byte(nil), v.([]byte)...), nil
	}
	v, err := c.backing.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, append([]byte(nil), v...))
	return v, nil
}

func (c *Cached) Put(ctx context.Context, key string, value []byte) error {
	if err := c.backing.Put(ctx, key, value); err != nil {
		return err
	}
	c.cache.SetDefault(key, append([]byte(nil), value...))
	return nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	if err := c.backing.Delete(ctx, key); err != nil {
		return err
	}
	c.cache.Delete(key)
	return nil
}

func (c *Cached) Ping(ctx context.Context) error {
	return c.backing.Ping(ctx)
}
