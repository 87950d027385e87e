package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all service settings, populated from environment variables.
type AppConfig struct {
	// Upstream sources.
	BalloonBaseURL string
	QuakeFeedURL   string

	// Refresh cadence and fetch behaviour.
	RefreshInterval time.Duration
	LookbackHours   int
	FetchTimeout    time.Duration
	FetchMaxRetries int

	// Quakes included in the dashboard overview response.
	QuakeLimit int

	// Inquiry store location. Empty means a default under the temp dir.
	InquiryDBPath string

	Port        string
	MetricsAddr string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		BalloonBaseURL: os.Getenv("BALLOON_BASE_URL"),
		QuakeFeedURL:   os.Getenv("QUAKE_FEED_URL"),
		InquiryDBPath:  os.Getenv("INQUIRY_DB_PATH"),
		Port:           getenvDefault("PORT", "8080"),
		MetricsAddr:    getenvDefault("METRICS_ADDR", ":9091"),
	}

	interval, err := parseDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	if interval < time.Second {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be at least 1s, got %s", interval)
	}
	cfg.RefreshInterval = interval

	timeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.FetchTimeout = timeout

	cfg.LookbackHours = getenvInt("LOOKBACK_HOURS", 24)
	if cfg.LookbackHours < 1 || cfg.LookbackHours > 24 {
		return nil, fmt.Errorf("LOOKBACK_HOURS must be between 1 and 24, got %d", cfg.LookbackHours)
	}

	cfg.FetchMaxRetries = getenvInt("FETCH_MAX_RETRIES", 0)
	if cfg.FetchMaxRetries < 0 {
		return nil, fmt.Errorf("FETCH_MAX_RETRIES must not be negative")
	}

	cfg.QuakeLimit = getenvInt("QUAKE_LIMIT", 20)

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := getenvDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
