// Package cache provides a small TTL cache used for memoizing derived
// values such as recommendation explanations.
package cache

import (
	"context"
	"time"
)

// Cache stores string values under string keys with an expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Close() error
}
