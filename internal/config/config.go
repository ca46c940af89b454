package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	LogLevel string
	LogJSON  bool

	DraftMaxAge          time.Duration
	DraftCleanupInterval time.Duration

	MaxBodyBytes int64
}

func Load() (*Config, error) {
	// .env is optional; env vars may already be set
	_ = godotenv.Load()

	cfg := &Config{
		Port:     os.Getenv("PORT"),
		LogLevel: os.Getenv("LOG_LEVEL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var err error
	if cfg.LogJSON, err = parseBoolEnv("LOG_JSON", false); err != nil {
		return nil, err
	}
	if cfg.DraftMaxAge, err = parseDurationEnv("DRAFT_MAX_AGE", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DraftCleanupInterval, err = parseDurationEnv("DRAFT_CLEANUP_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes, err = parseIntEnv("MAX_BODY_BYTES", 1<<20); err != nil {
		return nil, err
	}

	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"DRAFT_MAX_AGE", cfg.DraftMaxAge},
		{"DRAFT_CLEANUP_INTERVAL", cfg.DraftCleanupInterval},
	} {
		if d.val <= 0 {
			return nil, fmt.Errorf("env var %s must be positive, got %s", d.name, d.val)
		}
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("env var MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}

	return cfg, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("env var %s: %w", key, err)
	}
	return b, nil
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("env var %s: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("env var %s: %w", key, err)
	}
	return n, nil
}
