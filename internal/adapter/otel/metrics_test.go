package otel

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Strob0t/powerscrape/internal/config"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestMetrics_Counters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	m.Hit(ctx, "jackpot")
	m.Hit(ctx, "jackpot")
	m.Miss(ctx, "winnums")
	m.Refreshed(ctx, "winnums", nil)
	m.Refreshed(ctx, "jackpot", errors.New("boom"))
	m.Fetched(ctx, "www.powerball.com", 0.25, nil)

	sums := collect(t, reader)
	want := map[string]int64{
		"powerscrape.cache.hits":             2,
		"powerscrape.cache.misses":           1,
		"powerscrape.cache.refreshes":        1,
		"powerscrape.cache.refresh_failures": 1,
	}
	for name, v := range want {
		if sums[name] != v {
			t.Errorf("%s = %d, want %d", name, sums[name], v)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.Hit(ctx, "jackpot")
	m.Miss(ctx, "jackpot")
	m.Refreshed(ctx, "jackpot", nil)
	m.Fetched(ctx, "host", 1, nil)
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.OTEL{Enabled: false})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown returned %v", err)
	}
}
