package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultProviderURL is the production catalog endpoint, used when
// PROVIDER_URL is not set.
const DefaultProviderURL = "https://provider.code-challenge.feverup.com/api/events"

// Config holds all configuration for the application.
type Config struct {
	Environment     string
	Port            string
	ProviderURL     string
	ProviderTimeout time.Duration
	RateLimit       int
	RateWindow      time.Duration
}

// Load loads configuration from environment variables. Outside production it
// first attempts to load a .env file; a missing .env is not an error since
// production relies on system environment variables.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment: env,
		Port:        getEnv("PORT", "8080"),
		ProviderURL: getEnv("PROVIDER_URL", DefaultProviderURL),
	}

	timeoutSeconds, err := getEnvInt("PROVIDER_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.ProviderTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.RateLimit, err = getEnvInt("RATE_LIMIT", 60)
	if err != nil {
		return nil, err
	}

	windowSeconds, err := getEnvInt("RATE_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.RateWindow = time.Duration(windowSeconds) * time.Second

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}
