// Package config handles loading and validating configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration values for the pool engine.
type Config struct {
	// HTTP
	Port string

	// Storage
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	// Oracles
	OraclePushURL string
	OraclePullURL string

	// Randomness provider. With no URL configured the engine runs the
	// deterministic local provider (development only).
	RandomnessURL      string
	RandomnessProvider string
	RandomnessCallback string
	RandomnessFee      decimal.Decimal
	ReissueDelay       time.Duration
}

// Load reads configuration from environment variables with fallback to a
// .env file. Priority order: environment variables > .env file > defaults.
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found).
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		CacheTTL:           getDuration("CACHE_TTL", 30*time.Second),
		OraclePushURL:      os.Getenv("ORACLE_PUSH_URL"),
		OraclePullURL:      os.Getenv("ORACLE_PULL_URL"),
		RandomnessURL:      os.Getenv("RANDOMNESS_URL"),
		RandomnessProvider: getEnv("RANDOMNESS_PROVIDER", "local-rng"),
		RandomnessCallback: os.Getenv("RANDOMNESS_CALLBACK_URL"),
		ReissueDelay:       getDuration("RANDOMNESS_REISSUE_DELAY", time.Hour),
	}

	fee, err := decimal.NewFromString(getEnv("RANDOMNESS_FEE", "1"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid RANDOMNESS_FEE: %w", err)
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("config: RANDOMNESS_FEE must not be negative")
	}
	cfg.RandomnessFee = fee

	if cfg.RandomnessURL != "" && cfg.RandomnessCallback == "" {
		return nil, fmt.Errorf("config: RANDOMNESS_CALLBACK_URL is required when RANDOMNESS_URL is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
