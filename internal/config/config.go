// Package config loads server configuration from environment variables,
// with optional .env support for development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration parameters for the server.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	// SessionTTL is how long issued JWTs stay valid.
	SessionTTL time.Duration
	// AuthTokenTTL is how long verification/reset tokens stay valid.
	AuthTokenTTL time.Duration

	// BaseURL is the externally visible URL used in email links.
	BaseURL string

	// SMTP relay settings. Empty SMTPHost selects the log-only mailer.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first if present. JWT_SECRET is required; malformed
// optional values are logged and fall back to defaults.
func Load() (*Config, error) {
	// Best effort; a missing .env just means plain env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         intEnv("PORT", 8080),
		DBPath:       getEnv("DB_PATH", "./data/roomledger.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionTTL:   durationEnv("SESSION_TTL", 24*time.Hour),
		AuthTokenTTL: durationEnv("AUTH_TOKEN_TTL", time.Hour),
		BaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@roomledger.local"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer env var, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration env var, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}
