// Package config loads the stockctl settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Quote providers.
const (
	Eastmoney = "eastmoney"
	Yahoo     = "yahoo"
)

// Config holds the application configuration. Command line flags take
// precedence over it.
type Config struct {
	StocksFile       string
	LogLevel         string
	LogPretty        bool
	QuoteProvider    string
	EastmoneyBaseURL string
	SinaBaseURL      string
	HTTPTimeout      time.Duration
	HTTPCache        bool
}

// Load reads configuration from environment variables, after loading the
// .env files if they exist.
func Load(files ...string) (*Config, error) {
	// a missing .env file is not an error.
	_ = godotenv.Load(files...)

	cfg := &Config{
		StocksFile:       getEnv("STOCKS_FILE", "stocks.json"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getEnvAsBool("LOG_PRETTY", true),
		QuoteProvider:    getEnv("QUOTE_PROVIDER", Eastmoney),
		EastmoneyBaseURL: getEnv("EASTMONEY_BASE_URL", ""),
		SinaBaseURL:      getEnv("SINA_BASE_URL", ""),
		HTTPTimeout:      getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPCache:        getEnvAsBool("HTTP_CACHE", false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.QuoteProvider {
	case Eastmoney, Yahoo:
	default:
		return fmt.Errorf("QUOTE_PROVIDER must be %q or %q, got %q", Eastmoney, Yahoo, c.QuoteProvider)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.HTTPTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
