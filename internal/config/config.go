// Package config provides hierarchical configuration loading for powerscrape.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the powerscrape service.
type Config struct {
	Server   Server   `yaml:"server"`
	Upstream Upstream `yaml:"upstream"`
	Cache    Cache    `yaml:"cache"`
	NATS     NATS     `yaml:"nats"`
	Logging  Logging  `yaml:"logging"`
	Breaker  Breaker  `yaml:"breaker"`
	Rate     Rate     `yaml:"rate"`
	OTEL     OTEL     `yaml:"otel"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port           string        `yaml:"port"`
	CORSOrigin     string        `yaml:"cors_origin"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LegacySunset   time.Time     `yaml:"legacy_sunset"` // Sunset date advertised on the /powerboll-* routes
}

// Upstream holds the source documents and the client used to fetch them.
type Upstream struct {
	JackpotURL        string        `yaml:"jackpot_url"`
	WinningNumbersURL string        `yaml:"winning_numbers_url"`
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// Cache holds refresh-on-read cache configuration.
type Cache struct {
	RefreshPeriod time.Duration `yaml:"refresh_period"` // Age after which an entry is refetched on read (default: 60s)
	L1MaxSizeMB   int64         `yaml:"l1_max_size_mb"`
	L2Bucket      string        `yaml:"l2_bucket"` // NATS KV bucket, used only when nats.url is set
	L2TTL         time.Duration `yaml:"l2_ttl"`    // 0 = keep until overwritten
}

// NATS holds the optional NATS connection used for the shared L2 cache.
type NATS struct {
	URL string `yaml:"url"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration for upstream fetches.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Rate holds rate limiter configuration.
type Rate struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	MaxIdleTime       time.Duration `yaml:"max_idle_time"`
}

// OTEL holds OpenTelemetry export configuration.
type OTEL struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:           "3008",
			CORSOrigin:     "*",
			RequestTimeout: 30 * time.Second,
			LegacySunset:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Upstream: Upstream{
			JackpotURL:        "http://www.powerball.com/pb_home.asp",
			WinningNumbersURL: "http://www.powerball.com/powerball/winnums-text.txt",
			Timeout:           10 * time.Second,
			UserAgent:         "powerscrape/1.0",
			MaxBodyBytes:      4 << 20,
		},
		Cache: Cache{
			RefreshPeriod: 60 * time.Second,
			L1MaxSizeMB:   16,
			L2Bucket:      "POWERSCRAPE_CACHE",
		},
		Logging: Logging{
			Level:   "info",
			Service: "powerscrape",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Rate: Rate{
			RequestsPerSecond: 10,
			Burst:             50,
			CleanupInterval:   5 * time.Minute,
			MaxIdleTime:       10 * time.Minute,
		},
		OTEL: OTEL{
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "powerscrape",
		},
	}
}
