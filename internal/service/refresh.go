package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	psotel "github.com/Strob0t/powerscrape/internal/adapter/otel"
	"github.com/Strob0t/powerscrape/internal/port/cache"
)

// Entry is a cached refresh result. LastUpdate is the time of the refresh
// that produced Value and is never moved by a cache hit.
type Entry struct {
	Value      json.RawMessage `json:"value"`
	LastUpdate time.Time       `json:"last_update"`
}

// RefreshFunc fetches a fresh value and returns it JSON-encoded.
type RefreshFunc func(ctx context.Context) ([]byte, error)

// RefreshCache serves entries from a backing store and refreshes them on read
// once they are older than the refresh period. Concurrent refreshes of one
// key are collapsed into a single call.
type RefreshCache struct {
	store   cache.Cache
	period  time.Duration
	now     func() time.Time // for testing
	group   singleflight.Group
	metrics *psotel.Metrics
}

// NewRefreshCache creates a cache over store whose entries go stale after period.
func NewRefreshCache(store cache.Cache, period time.Duration) *RefreshCache {
	return &RefreshCache{
		store:  store,
		period: period,
		now:    time.Now,
	}
}

// SetMetrics records hits, misses and refresh outcomes on m.
func (c *RefreshCache) SetMetrics(m *psotel.Metrics) {
	c.metrics = m
}

// Get returns the entry for key. A missing or stale entry is replaced by the
// result of refresh; if refresh fails its error is returned and the stored
// entry is left as it was. An entry whose age equals the period is fresh.
//
// The refresh itself is detached from ctx so that other readers sharing it
// are unaffected when one caller goes away, but Get stops waiting and
// returns ctx.Err() as soon as ctx is done. The refresh then completes in
// the background and its result is stored for the next read.
func (c *RefreshCache) Get(ctx context.Context, key string, refresh RefreshFunc) (*Entry, error) {
	if e, ok := c.lookup(ctx, key); ok && !c.stale(e) {
		c.metrics.Hit(ctx, key)
		return e, nil
	}
	c.metrics.Miss(ctx, key)

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if e, ok := c.lookup(flightCtx, key); ok && !c.stale(e) {
			return e, nil
		}
		return c.refresh(flightCtx, key, refresh)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.DebugContext(ctx, "cache refresh shared", "key", key)
		}
		e := res.Val.(*Entry)
		return &Entry{Value: bytes.Clone(e.Value), LastUpdate: e.LastUpdate}, nil
	case <-ctx.Done():
		slog.DebugContext(ctx, "cache read abandoned", "key", key, "error", ctx.Err())
		return nil, ctx.Err()
	}
}

func (c *RefreshCache) refresh(ctx context.Context, key string, fn RefreshFunc) (*Entry, error) {
	ctx, span := psotel.StartRefreshSpan(ctx, key)

	value, err := fn(ctx)
	c.metrics.Refreshed(ctx, key, err)
	psotel.EndSpan(span, err)
	if err != nil {
		slog.WarnContext(ctx, "cache refresh failed", "key", key, "error", err)
		return nil, err
	}

	e := &Entry{Value: value, LastUpdate: c.now()}

	data, err := json.Marshal(e)
	if err != nil {
		slog.ErrorContext(ctx, "cache entry encode failed", "key", key, "error", err)
		return e, nil
	}
	if err := c.store.Set(ctx, key, data, 0); err != nil {
		slog.WarnContext(ctx, "cache store failed", "key", key, "error", err)
	}

	slog.DebugContext(ctx, "cache refreshed", "key", key, "last_update", e.LastUpdate)
	return e, nil
}

// lookup reads and decodes the stored entry. Store and decode failures are
// logged and reported as a miss; an entry that cannot be decoded is evicted
// so a failed refresh does not leave it behind.
func (c *RefreshCache) lookup(ctx context.Context, key string) (*Entry, bool) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "cache lookup failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		slog.WarnContext(ctx, "cache entry decode failed, evicting", "key", key, "error", err)
		if err := c.store.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "cache evict failed", "key", key, "error", err)
		}
		return nil, false
	}
	return &e, true
}

func (c *RefreshCache) stale(e *Entry) bool {
	return c.now().Sub(e.LastUpdate) > c.period
}
