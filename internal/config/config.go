// Package config loads runtime configuration from environment variables,
// with a .env file honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	BaseURL        string // backend base URL, required
	SessionDBPath  string
	ConnectTimeout time.Duration
	RWTimeout      time.Duration
	OverallTimeout time.Duration
	DialAttempts   int
	FanoutWidth    int // concurrent calls in an equal split
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	baseURL := strings.TrimSpace(os.Getenv("TRIPWISER_BASE_URL"))
	if baseURL == "" {
		return Config{}, fmt.Errorf("TRIPWISER_BASE_URL is required")
	}

	cfg := Config{
		BaseURL:       baseURL,
		SessionDBPath: getEnv("TRIPWISER_SESSION_DB", "./data/session.db"),
	}

	var err error
	if cfg.ConnectTimeout, err = durationEnv("TRIPWISER_CONNECT_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RWTimeout, err = durationEnv("TRIPWISER_RW_TIMEOUT", 120*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.OverallTimeout, err = durationEnv("TRIPWISER_CALL_TIMEOUT", 180*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.DialAttempts, err = intEnv("TRIPWISER_DIAL_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if cfg.FanoutWidth, err = intEnv("TRIPWISER_FANOUT_WIDTH", 4); err != nil {
		return Config{}, err
	}
	if cfg.DialAttempts < 1 {
		return Config{}, fmt.Errorf("TRIPWISER_DIAL_ATTEMPTS must be at least 1")
	}
	if cfg.FanoutWidth < 1 {
		return Config{}, fmt.Errorf("TRIPWISER_FANOUT_WIDTH must be at least 1")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 60s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
