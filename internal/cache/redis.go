package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the TTL cache with a Redis instance so explanation reuse
// survives restarts and is shared across engine replicas.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to addr and verifies the connection with a bounded ping.
func NewRedis(addr, password string, db int, prefix string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

// Get returns the cached value if present.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores the value with the given TTL. Errors are ignored: the cache is
// an optimization, not a store of record.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	_ = c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error { return c.client.Close() }
