package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port           string
	MongoURI       string
	RedisURL       string // optional; empty disables the Redis fast path
	AllowedOrigins string
	Environment    string

	// UseTransactions couples each ledger write with its counter update in
	// one commit. Requires a MongoDB replica set; leave false on a
	// standalone server and let the reconciliation job heal drift.
	UseTransactions bool

	// ViewDedupWindow is the sliding window for view counting
	ViewDedupWindow time.Duration

	// ReconcileInterval is how often the counter reconciliation job runs;
	// zero disables it
	ReconcileInterval time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "3001"),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017/brain_scroll"),
		RedisURL:       getEnv("REDIS_URL", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		Environment:    getEnv("ENVIRONMENT", "development"),

		UseTransactions:   getBoolEnv("MONGO_USE_TRANSACTIONS", false),
		ViewDedupWindow:   getDurationEnv("VIEW_DEDUP_WINDOW", time.Hour),
		ReconcileInterval: getDurationEnv("RECONCILE_INTERVAL", time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
