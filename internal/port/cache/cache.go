// Package cache defines the port interface for the byte-oriented entry store
// that backs the refresh-on-read cache.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value storage of encoded entries.
// A ttl of zero means the entry is kept until overwritten or evicted.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
