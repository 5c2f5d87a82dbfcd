package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TokenSecret string // Required: symmetric signing secret for tokens
	Pepper      string // Optional: server-side pepper mixed into password hashing

	DatabaseFile        string        // Path to SQLite database file (default: ./tally.db)
	RedisURL            string        // Redis connection URL (default: redis://localhost:6379/0)
	CacheTTL            time.Duration // Lifetime of cached snapshots (default: 300s)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	return Config{
		TokenSecret:         os.Getenv("TALLY_SECRET"),
		Pepper:              os.Getenv("TALLY_PEPPER"),
		DatabaseFile:        getEnvOrDefault("TALLY_DATABASE_FILE", "tally.db"),
		RedisURL:            getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:            getEnvDurationOrDefault("CACHE_TTL", 300*time.Second),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept duration syntax ("5m", "300s") or plain integer seconds.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
