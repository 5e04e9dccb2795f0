package main

import (
	"context"
	"fmt"

	"github.com/Strob0t/powerscrape/internal/adapter/natskv"
	psotel "github.com/Strob0t/powerscrape/internal/adapter/otel"
	"github.com/Strob0t/powerscrape/internal/adapter/ristretto"
	"github.com/Strob0t/powerscrape/internal/adapter/tiered"
	"github.com/Strob0t/powerscrape/internal/adapter/upstream"
	"github.com/Strob0t/powerscrape/internal/config"
	"github.com/Strob0t/powerscrape/internal/port/cache"
	"github.com/Strob0t/powerscrape/internal/resilience"
	"github.com/Strob0t/powerscrape/internal/service"
)

// deps holds the wired lottery stack shared by the server and the check command.
type deps struct {
	lottery *service.LotteryService
	breaker *resilience.Breaker
	l2      bool
	close   func()
}

// newDeps wires the upstream client, the entry store and the lottery service.
// The NATS KV store is only attached when withL2 is set and a URL is configured.
func newDeps(ctx context.Context, cfg *config.Config, metrics *psotel.Metrics, withL2 bool) (*deps, error) {
	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return nil, fmt.Errorf("l1 cache: %w", err)
	}
	closers := []func(){l1.Close}

	var store cache.Cache = l1
	l2 := false
	if withL2 && cfg.NATS.URL != "" {
		kv, err := natskv.Connect(ctx, cfg.NATS.URL, cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
		if err != nil {
			l1.Close()
			return nil, fmt.Errorf("l2 cache: %w", err)
		}
		closers = append(closers, kv.Close)
		store = tiered.New(l1, kv, cfg.Cache.RefreshPeriod)
		l2 = true
	}

	breaker := resilience.NewBreaker("upstream", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)

	client := upstream.NewClient(cfg.Upstream)
	client.SetBreaker(breaker)
	client.SetMetrics(metrics)

	refresh := service.NewRefreshCache(store, cfg.Cache.RefreshPeriod)
	refresh.SetMetrics(metrics)

	return &deps{
		lottery: service.NewLotteryService(client, refresh, cfg.Upstream),
		breaker: breaker,
		l2:      l2,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
