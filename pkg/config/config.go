package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Billing  BillingConfig
	Usage    UsageConfig
	LogLevel string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// RedisConfig holds Redis configuration. Redis is optional: without it the
// plan cache falls back to TTL-only expiry.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// AuthConfig holds credential verification configuration
type AuthConfig struct {
	// Verifier selects the token verifier: "jwt" or "oidc"
	Verifier string

	// JWT verifier settings
	JWTSecret string
	JWTIssuer string

	// OIDC verifier settings
	OIDCIssuerURL string
	OIDCClientID  string
}

// BillingConfig holds subscription evaluation settings
type BillingConfig struct {
	// GraceDays is the past-due window during which access continues
	GraceDays int
}

// UsageConfig holds usage reporting settings
type UsageConfig struct {
	// ReportSchedule is the cron expression for the usage gauge exporter
	ReportSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("BOOKLINE_HOST", "0.0.0.0"),
			Port:            getEnv("BOOKLINE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("BOOKLINE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("BOOKLINE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("BOOKLINE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("BOOKLINE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("BOOKLINE_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("BOOKLINE_POSTGRES_URL", ""),
			MaxOpenConns: getEnvInt("BOOKLINE_POSTGRES_MAX_CONNS", 25),
			MaxIdleConns: getEnvInt("BOOKLINE_POSTGRES_IDLE_CONNS", 5),
			ConnLifetime: getEnvDuration("BOOKLINE_POSTGRES_CONN_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      getEnv("BOOKLINE_REDIS_URL", ""),
			Password: getEnv("BOOKLINE_REDIS_PASSWORD", ""),
			DB:       getEnvInt("BOOKLINE_REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Verifier:      strings.ToLower(getEnv("BOOKLINE_AUTH_VERIFIER", "jwt")),
			JWTSecret:     getEnv("BOOKLINE_JWT_SECRET", ""),
			JWTIssuer:     getEnv("BOOKLINE_JWT_ISSUER", "bookline"),
			OIDCIssuerURL: getEnv("BOOKLINE_OIDC_ISSUER_URL", ""),
			OIDCClientID:  getEnv("BOOKLINE_OIDC_CLIENT_ID", ""),
		},
		Billing: BillingConfig{
			GraceDays: getEnvInt("BOOKLINE_BILLING_GRACE_DAYS", 3),
		},
		Usage: UsageConfig{
			ReportSchedule: getEnv("BOOKLINE_USAGE_REPORT_SCHEDULE", "*/5 * * * *"),
		},
		LogLevel: getEnv("BOOKLINE_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}

	switch c.Auth.Verifier {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT secret is required for the jwt verifier")
		}
	case "oidc":
		if c.Auth.OIDCIssuerURL == "" {
			return fmt.Errorf("OIDC issuer URL is required for the oidc verifier")
		}
		if c.Auth.OIDCClientID == "" {
			return fmt.Errorf("OIDC client ID is required for the oidc verifier")
		}
	default:
		return fmt.Errorf("invalid auth verifier: %s (must be jwt or oidc)", c.Auth.Verifier)
	}

	if c.Billing.GraceDays < 0 {
		return fmt.Errorf("billing grace days must not be negative")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
