package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Auth modes
const (
	AuthModeNone    = "none"
	AuthModeGateway = "gateway"
	AuthModeJWT     = "jwt"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Persistence (empty keeps generations and presets in memory)
	DatabaseURL string

	// Observability
	SentryDSN string

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": Validate HS256 bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string

	// Generation defaults
	NoiseStrategy           string  // spectral or gaussian
	DefaultHumanizeTemplate string
	DefaultTempo            int
	MinNoteDuration         float64 // beats
}

func Load() *Config {
	return &Config{
		Environment:             getEnv("ENVIRONMENT", "development"),
		Port:                    getEnv("PORT", "8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		SentryDSN:               getEnv("SENTRY_DSN", ""),
		AuthMode:                strings.ToLower(getEnv("AUTH_MODE", AuthModeNone)), // Default to no auth for self-hosted
		JWTSecret:               getEnv("JWT_SECRET", ""),
		NoiseStrategy:           getEnv("NOISE_STRATEGY", "spectral"),
		DefaultHumanizeTemplate: getEnv("DEFAULT_HUMANIZE_TEMPLATE", "default_subtle"),
		DefaultTempo:            getEnvInt("DEFAULT_TEMPO", 120),
		MinNoteDuration:         getEnvFloat("MIN_NOTE_DURATION", 0.125),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}

// IsJWTMode returns true if bearer tokens are validated locally
func (c *Config) IsJWTMode() bool {
	return c.AuthMode == AuthModeJWT
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesDatabase reports whether a database URL is configured
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// Validate rejects unknown auth modes and a JWT mode without a secret
func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModeNone, AuthModeGateway:
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q (want none, gateway or jwt)", c.AuthMode)
	}
	return nil
}
