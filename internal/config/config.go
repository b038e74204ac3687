// Package config loads CLI defaults from MTGALOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings that command-line flags fall back to.
// The log directory is resolved separately by logfinder (MTGALOG_LOGDIR).
type Config struct {
	PollInterval    time.Duration `env:"MTGALOG_POLL_INTERVAL"     envDefault:"2s"`
	MaxPendingCalls int           `env:"MTGALOG_MAX_PENDING_CALLS" envDefault:"0"`
	ListenAddr      string        `env:"MTGALOG_LISTEN_ADDR"       envDefault:"127.0.0.1:8787"`
	LogLevel        slog.Level    `env:"MTGALOG_LOG_LEVEL"         envDefault:"warn"`
}

// Load reads dotenv files, then parses the environment. Missing dotenv
// files are ignored, and variables already set in the environment win
// over file values.
func Load(dotenvFiles ...string) (Config, error) {
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("MTGALOG_POLL_INTERVAL must be positive, got %v", cfg.PollInterval)
	}
	if cfg.MaxPendingCalls < 0 {
		return Config{}, fmt.Errorf("MTGALOG_MAX_PENDING_CALLS must be non-negative, got %d", cfg.MaxPendingCalls)
	}
	return cfg, nil
}
