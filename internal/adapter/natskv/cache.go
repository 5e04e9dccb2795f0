// Package natskv implements the cache port using NATS JetStream KV as the
// shared L2 entry store.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Cache wraps a NATS JetStream KeyValue bucket as an L2 cache.
type Cache struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

// New creates a cache over an existing KeyValue bucket.
func New(kv jetstream.KeyValue) *Cache {
	return &Cache{kv: kv}
}

// Connect dials NATS and ensures the bucket exists. ttl is the bucket-wide
// maximum age of an entry; zero keeps entries until overwritten.
func Connect(ctx context.Context, url, bucket string, ttl time.Duration) (*Cache, error) {
	nc, err := nats.Connect(url, nats.Name("powerscrape"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "powerscrape refresh cache entries",
		TTL:         ttl,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream kv %s: %w", bucket, err)
	}

	slog.Info("nats kv connected", "url", url, "bucket", bucket)
	return &Cache{nc: nc, kv: kv}, nil
}

// Get retrieves a value from the bucket.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	entry, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value(), true, nil
}

// Set stores a value in the bucket. TTL is managed at bucket level.
func (c *Cache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := c.kv.Put(ctx, key, value)
	return err
}

// Delete removes a value from the bucket.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close drains the NATS connection when the cache owns one.
func (c *Cache) Close() {
	if c.nc == nil {
		return
	}
	if err := c.nc.Drain(); err != nil {
		slog.Warn("nats drain failed", "error", err)
	}
}
