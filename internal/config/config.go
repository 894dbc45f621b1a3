// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBackendURL is used when no backend URL is configured.
const DefaultBackendURL = "http://localhost:8000"

// Config holds the settings resolved once at startup.
type Config struct {
	BackendURL  string        // plan service and chat assistant base URL
	HTTPTimeout time.Duration // plan service requests; chat streams are not bounded
	Addr        string        // listen address of the assistant backend
	LogLevel    slog.Level
}

// LoadDotEnv reads variables from the given .env files (default ".env")
// into the environment. Variables already set win. Missing files are not
// an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		BackendURL:  getEnv("INTELLISTUDY_BACKEND_URL", getEnv("INTELLISTUDY_API_URL", DefaultBackendURL)),
		HTTPTimeout: getEnvDuration("INTELLISTUDY_HTTP_TIMEOUT", 2*time.Minute),
		Addr:        getEnv("INTELLISTUDY_ADDR", ":8000"),
		LogLevel:    parseLevel(getEnv("INTELLISTUDY_LOG_LEVEL", "info")),
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are usable.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("INTELLISTUDY_BACKEND_URL cannot be empty")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("INTELLISTUDY_BACKEND_URL must be an http(s) URL, got %q", c.BackendURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("INTELLISTUDY_HTTP_TIMEOUT must be > 0")
	}
	if c.Addr == "" {
		return fmt.Errorf("INTELLISTUDY_ADDR cannot be empty")
	}
	return nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
