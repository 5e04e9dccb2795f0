package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// CLIFlags holds command-line overrides. A nil field was not given on the
// command line and leaves the lower layers untouched.
type CLIFlags struct {
	ConfigPath    *string
	Port          *string
	LogLevel      *string
	NatsURL       *string
	RefreshPeriod *time.Duration
}

// ParseFlags parses serve flags from args (without the program name).
func ParseFlags(args []string) (CLIFlags, error) {
	fs := flag.NewFlagSet("powerscrape", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configPath, port, logLevel, natsURL string
		refresh                             time.Duration
	)
	fs.StringVar(&configPath, "config", "", "path to YAML config")
	fs.StringVar(&configPath, "c", "", "shorthand for --config")
	fs.StringVar(&port, "port", "", "HTTP listen port")
	fs.StringVar(&port, "p", "", "shorthand for --port")
	fs.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&natsURL, "nats-url", "", "NATS URL for the shared L2 cache")
	fs.DurationVar(&refresh, "refresh-period", 0, "cache refresh period")

	if err := fs.Parse(args); err != nil {
		return CLIFlags{}, fmt.Errorf("parse flags: %w", err)
	}

	var out CLIFlags
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config", "c":
			out.ConfigPath = &configPath
		case "port", "p":
			out.Port = &port
		case "log-level":
			out.LogLevel = &logLevel
		case "nats-url":
			out.NatsURL = &natsURL
		case "refresh-period":
			out.RefreshPeriod = &refresh
		}
	})
	return out, nil
}

// LoadWithCLI returns a Config using the hierarchy: defaults < YAML < ENV < CLI,
// together with the YAML path that was consulted.
func LoadWithCLI(flags CLIFlags) (*Config, string, error) {
	path := configPath(flags)

	cfg := Defaults()
	if err := loadYAML(&cfg, path); err != nil {
		return nil, path, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)
	applyCLI(&cfg, flags)

	if err := validate(&cfg); err != nil {
		return nil, path, fmt.Errorf("config validate: %w", err)
	}
	return &cfg, path, nil
}

func applyCLI(cfg *Config, flags CLIFlags) {
	if flags.Port != nil {
		cfg.Server.Port = *flags.Port
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
	if flags.NatsURL != nil {
		cfg.NATS.URL = *flags.NatsURL
	}
	if flags.RefreshPeriod != nil {
		cfg.Cache.RefreshPeriod = *flags.RefreshPeriod
	}
}
