package tenantstore

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/redis/go-redis/v9"
)

// Cache stores encoded tenant records.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RistrettoCache is an in-process cache bounded by the total size of the
// stored values.
type RistrettoCache struct {
	c *ristretto.Cache[string, []byte]
}

// NewRistrettoCache creates a cache holding up to maxCostBytes of values.
func NewRistrettoCache(maxCostBytes int64) (*RistrettoCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxCostBytes/100, 1000),
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoCache{c: c}, nil
}

func (c *RistrettoCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := c.c.Get(key)
	return val, found, nil
}

// Set waits for the write buffer to drain so a following Get observes the
// value.
func (c *RistrettoCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	c.c.Wait()
	return nil
}

func (c *RistrettoCache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

func (c *RistrettoCache) Close() {
	c.c.Close()
}

// RedisCache shares cached tenants between application instances.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

const defaultL1Expire = 5 * time.Second

// TieredCache checks an in-process cache before a shared one and backfills
// the first on a hit in the second. Entries never outlive l1Expire in the
// in-process tier, so changes written to the shared tier by other instances
// become visible within that window.
type TieredCache struct {
	l1       Cache
	l2       Cache
	l1Expire time.Duration
}

func NewTieredCache(l1, l2 Cache, l1Expire time.Duration) *TieredCache {
	if l1Expire <= 0 {
		l1Expire = defaultL1Expire
	}
	return &TieredCache{l1: l1, l2: l2, l1Expire: l1Expire}
}

func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, found, err := c.l1.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found {
		return val, true, nil
	}

	val, found, err = c.l2.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	_ = c.l1.Set(ctx, key, val, c.l1Expire)
	return val, true, nil
}

func (c *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l1TTL := c.l1Expire
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	if err := c.l1.Set(ctx, key, value, l1TTL); err != nil {
		return err
	}
	return c.l2.Set(ctx, key, value, ttl)
}

func (c *TieredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.l1.Delete(ctx, key), c.l2.Delete(ctx, key))
}
