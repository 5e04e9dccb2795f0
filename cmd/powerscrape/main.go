package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	pshttp "github.com/Strob0t/powerscrape/internal/adapter/http"
	psotel "github.com/Strob0t/powerscrape/internal/adapter/otel"
	"github.com/Strob0t/powerscrape/internal/config"
	"github.com/Strob0t/powerscrape/internal/logger"
	"github.com/Strob0t/powerscrape/internal/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	args := os.Args[1:]
	var err error
	if len(args) > 0 && args[0] == "check" {
		err = runCheck(args[1:])
	} else {
		err = run(args)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	cfg, path, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"file", path,
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"refresh_period", cfg.Cache.RefreshPeriod,
		"nats", cfg.NATS.URL != "",
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownOTEL, err := psotel.Init(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTEL(sctx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := psotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Services ---
	d, err := newDeps(ctx, cfg, metrics, true)
	if err != nil {
		return err
	}
	defer d.close()

	handlers := &pshttp.Handlers{
		Lottery: d.lottery,
		Breaker: d.breaker,
		L2:      d.l2,
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r := newRouter(cfg, handlers, limiter)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the chi router with the full middleware chain.
func newRouter(cfg *config.Config, h *pshttp.Handlers, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(pshttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(psotel.HTTPMiddleware(cfg.OTEL.ServiceName))
	r.Use(pshttp.SecurityHeaders)
	r.Use(pshttp.CORS(cfg.Server.CORSOrigin))
	r.Use(chimw.Timeout(cfg.Server.RequestTimeout))

	pshttp.MountRoutes(r, h, cfg.Server, limiter.Handler)
	return r
}
