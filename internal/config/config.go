// Package config loads runtime settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvURL      = "SUGARFIT_URL"
	EnvAddr     = "SUGARFIT_ADDR"
	EnvTimeout  = "SUGARFIT_TIMEOUT"
	EnvLogLevel = "SUGARFIT_LOG_LEVEL"
)

// Defaults
const (
	DefaultURL      = "https://www.sugarfitness.hu/"
	DefaultAddr     = ":8080"
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "info"
)

// Config holds the crawler's settings
type Config struct {
	URL      string
	Addr     string
	Timeout  time.Duration
	LogLevel string
}

// Load reads the given .env files (missing ones are skipped, variables already
// set in the environment win) and then the environment itself.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg := &Config{
		URL:      getenv(EnvURL, DefaultURL),
		Addr:     getenv(EnvAddr, DefaultAddr),
		Timeout:  DefaultTimeout,
		LogLevel: getenv(EnvLogLevel, DefaultLogLevel),
	}

	if raw := os.Getenv(EnvTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvTimeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", EnvTimeout, raw)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
