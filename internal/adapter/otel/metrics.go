package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "powerscrape"

// Metrics holds the refresh cache and upstream metric instruments.
type Metrics struct {
	CacheHits       metric.Int64Counter
	CacheMisses     metric.Int64Counter
	Refreshes       metric.Int64Counter
	RefreshFailures metric.Int64Counter
	FetchDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return newMetrics(otel.Meter(meterName))
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.CacheHits, err = meter.Int64Counter("powerscrape.cache.hits",
		metric.WithDescription("Reads served from a fresh cache entry"))
	if err != nil {
		return nil, err
	}

	m.CacheMisses, err = meter.Int64Counter("powerscrape.cache.misses",
		metric.WithDescription("Reads that found no entry or a stale one"))
	if err != nil {
		return nil, err
	}

	m.Refreshes, err = meter.Int64Counter("powerscrape.cache.refreshes",
		metric.WithDescription("Successful entry refreshes"))
	if err != nil {
		return nil, err
	}

	m.RefreshFailures, err = meter.Int64Counter("powerscrape.cache.refresh_failures",
		metric.WithDescription("Failed entry refreshes"))
	if err != nil {
		return nil, err
	}

	m.FetchDuration, err = meter.Float64Histogram("powerscrape.upstream.fetch.duration_seconds",
		metric.WithDescription("Upstream fetch duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Hit records a fresh read of key. A nil *Metrics records nothing.
func (m *Metrics) Hit(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}

// Miss records a read of key that required a refresh.
func (m *Metrics) Miss(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.CacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}

// Refreshed records the outcome of a refresh of key.
func (m *Metrics) Refreshed(ctx context.Context, key string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("cache.key", key))
	if err != nil {
		m.RefreshFailures.Add(ctx, 1, attrs)
		return
	}
	m.Refreshes.Add(ctx, 1, attrs)
}

// Fetched records how long a fetch of host took.
func (m *Metrics) Fetched(ctx context.Context, host string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("upstream.host", host),
		attribute.Bool("error", err != nil),
	))
}
