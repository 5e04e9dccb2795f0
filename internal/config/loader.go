package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "powerscrape.yaml"

// configPath resolves the YAML file to read: the --config flag, then
// POWERSCRAPE_CONFIG, then DefaultConfigFile.
func configPath(flags CLIFlags) string {
	if flags.ConfigPath != nil {
		return *flags.ConfigPath
	}
	if v := os.Getenv("POWERSCRAPE_CONFIG"); v != "" {
		return v
	}
	return DefaultConfigFile
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "POWERSCRAPE_PORT")
	setString(&cfg.Server.CORSOrigin, "POWERSCRAPE_CORS_ORIGIN")
	setDuration(&cfg.Server.RequestTimeout, "POWERSCRAPE_REQUEST_TIMEOUT")

	// Upstream
	setString(&cfg.Upstream.JackpotURL, "POWERSCRAPE_JACKPOT_URL")
	setString(&cfg.Upstream.WinningNumbersURL, "POWERSCRAPE_WINNUMS_URL")
	setDuration(&cfg.Upstream.Timeout, "POWERSCRAPE_UPSTREAM_TIMEOUT")
	setString(&cfg.Upstream.UserAgent, "POWERSCRAPE_USER_AGENT")
	setInt64(&cfg.Upstream.MaxBodyBytes, "POWERSCRAPE_MAX_BODY_BYTES")

	// Cache
	setDuration(&cfg.Cache.RefreshPeriod, "POWERSCRAPE_CACHE_REFRESH_PERIOD")
	setInt64(&cfg.Cache.L1MaxSizeMB, "POWERSCRAPE_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "POWERSCRAPE_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "POWERSCRAPE_CACHE_L2_TTL")
	setString(&cfg.NATS.URL, "NATS_URL")

	setString(&cfg.Logging.Level, "POWERSCRAPE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "POWERSCRAPE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "POWERSCRAPE_LOG_ASYNC")
	setInt(&cfg.Breaker.MaxFailures, "POWERSCRAPE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "POWERSCRAPE_BREAKER_TIMEOUT")
	setFloat64(&cfg.Rate.RequestsPerSecond, "POWERSCRAPE_RATE_RPS")
	setInt(&cfg.Rate.Burst, "POWERSCRAPE_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "POWERSCRAPE_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "POWERSCRAPE_RATE_MAX_IDLE_TIME")

	// OpenTelemetry
	setBool(&cfg.OTEL.Enabled, "POWERSCRAPE_OTEL_ENABLED")
	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTEL.Insecure, "POWERSCRAPE_OTEL_INSECURE")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be > 0")
	}
	if cfg.Upstream.JackpotURL == "" {
		return errors.New("upstream.jackpot_url is required")
	}
	if cfg.Upstream.WinningNumbersURL == "" {
		return errors.New("upstream.winning_numbers_url is required")
	}
	if cfg.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be > 0")
	}
	if cfg.Cache.RefreshPeriod <= 0 {
		return errors.New("cache.refresh_period must be > 0")
	}
	if cfg.Cache.L1MaxSizeMB < 1 {
		return errors.New("cache.l1_max_size_mb must be >= 1")
	}
	if cfg.NATS.URL != "" && cfg.Cache.L2Bucket == "" {
		return errors.New("cache.l2_bucket is required when nats.url is set")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.RequestsPerSecond <= 0 {
		return errors.New("rate.requests_per_second must be > 0")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Rate.CleanupInterval <= 0 {
		return errors.New("rate.cleanup_interval must be > 0")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
