// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel           string // debug, info, warn, error
	ListenAddr         string // Server listen address (e.g., ":8080")
	MetricsListenAddr  string // Metrics listener address (e.g., "localhost:9090")
	DatabasePath       string // SQLite database path
	JWTSecret          string // Required: HS256 signing secret shared with the identity provider
	JWTIssuer          string // Expected JWT issuer
	BootstrapAdminHash string // Optional: bcrypt hash of the bootstrap admin secret
	RateLimitPerSecond int    // Per-IP request budget on authenticated routes
	RateLimitBurst     int    // Per-IP burst allowance
}

// Load parses configuration from environment variables.
// All options except JWT_SECRET have sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:           getenvDefault("LOG_LEVEL", "info"),
		ListenAddr:         getenvDefault("LISTEN_ADDR", ":8080"),
		MetricsListenAddr:  getenvDefault("METRICS_LISTEN_ADDR", "localhost:9090"),
		DatabasePath:       getenvDefault("DATABASE_PATH", "/data/accessgate.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          getenvDefault("JWT_ISSUER", "dataline"),
		BootstrapAdminHash: os.Getenv("BOOTSTRAP_ADMIN_HASH"),
	}

	var err error
	cfg.RateLimitPerSecond, err = getenvInt("RATE_LIMIT_PER_SECOND", 25)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitBurst, err = getenvInt("RATE_LIMIT_BURST", 50)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q (must be: debug, info, warn, error)", c.LogLevel)
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
