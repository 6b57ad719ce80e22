package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// config holds bench settings. Environment variables (optionally from a
// .env file) provide defaults; command-line flags override them.
type config struct {
	Profile     string        `env:"LRUTRACK_PROFILE"`
	Duration    time.Duration `env:"LRUTRACK_DURATION" envDefault:"10s"`
	Workers     int           `env:"LRUTRACK_WORKERS"`
	Seed        int64         `env:"LRUTRACK_SEED"`
	MetricsAddr string        `env:"LRUTRACK_METRICS_ADDR" envDefault:":8080"`
	PprofAddr   string        `env:"LRUTRACK_PPROF_ADDR"`
	LogLevel    slog.Level    `env:"LRUTRACK_LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"LRUTRACK_LOG_FORMAT" envDefault:"text"`
}

func loadConfig(args []string) (config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2 * runtime.GOMAXPROCS(0)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "workload profile YAML (empty = built-in)")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "benchmark duration")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.StringVar(&cfg.MetricsAddr, "http", cfg.MetricsAddr, "serve Prometheus metrics at addr; empty = disabled")
	fs.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "serve pprof at addr (e.g. :6060); empty = disabled")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug | info | warn | error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text | json")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func newLogger(cfg config) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	switch cfg.LogFormat {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", cfg.LogFormat)
	}
}
