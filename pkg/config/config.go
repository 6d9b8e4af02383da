package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all bridge configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// CLOB connection
	CLOBHost      string
	ChainID       int64
	PrivateKey    string
	SignatureType string // EOA, POLY_PROXY, POLY_GNOSIS_SAFE or raw numeric code
	FunderAddress string

	// User channel WebSocket (watch-order)
	WSUserURL string

	// Fee rate cache
	FeeRateTTL time.Duration // 0 = entries never expire

	// Submission audit log
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		CLOBHost:      getEnvOrDefault("CLOB_HTTP_URL", "https://clob.polymarket.com"),
		ChainID:       getInt64OrDefault("CLOB_CHAIN_ID", 137), // Polygon mainnet
		PrivateKey:    getEnv("CLOB_PRIVATE_KEY", "POLYMARKET_PRIVATE_KEY"),
		SignatureType: getEnvOrDefault("CLOB_SIGNATURE_TYPE", "EOA"),
		FunderAddress: getEnv("CLOB_FUNDER_ADDRESS", "POLYMARKET_PROXY_ADDRESS"),

		WSUserURL: getEnvOrDefault("CLOB_WS_USER_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/user"),

		FeeRateTTL: getDurationOrDefault("FEE_RATE_TTL", 0),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "clobbridge"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", ""),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "clob_bridge"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid. The private key is
// deliberately not required here: commands that only read public data run
// without one, and order-placing commands validate it at session creation.
func (c *Config) Validate() error {
	if c.CLOBHost == "" {
		return fmt.Errorf("CLOB_HTTP_URL cannot be empty")
	}

	if c.ChainID <= 0 {
		return fmt.Errorf("CLOB_CHAIN_ID must be positive, got %d", c.ChainID)
	}

	if c.FeeRateTTL < 0 {
		return fmt.Errorf("FEE_RATE_TTL cannot be negative, got %v", c.FeeRateTTL)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

// getEnv returns the first non-empty value among the given env var names.
func getEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
