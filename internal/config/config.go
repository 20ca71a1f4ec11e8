// Package config loads tickseq settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-provided defaults of the CLI. Flags
// override every field.
type Config struct {
	// DB is the SQLite journal path. Empty disables journaling.
	DB string `env:"TICKSEQ_DB"`
	// TickInterval is the real-time tick period.
	TickInterval time.Duration `env:"TICKSEQ_TICK_INTERVAL" envDefault:"16ms"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"TICKSEQ_LOG_LEVEL" envDefault:"info"`
	// MetricsAddr is the listen address of the /metrics endpoint. Empty
	// disables it.
	MetricsAddr string `env:"TICKSEQ_METRICS_ADDR"`
	// RetryLimit caps Pending retries per step. Zero means unlimited.
	RetryLimit int `env:"TICKSEQ_RETRY_LIMIT" envDefault:"0"`
	// StarvationThreshold enables the starvation watchdog when positive.
	StarvationThreshold time.Duration `env:"TICKSEQ_STARVATION_THRESHOLD" envDefault:"0s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("retry limit must not be negative, got %d", c.RetryLimit)
	}
	if c.StarvationThreshold < 0 {
		return fmt.Errorf("starvation threshold must not be negative, got %s", c.StarvationThreshold)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level. Invalid values fall back to
// info; Validate reports them.
func (c Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps a level name to a slog.Level. Matching is case
// insensitive and the empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
