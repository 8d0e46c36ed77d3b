package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       slog.Level
	RedisURL       string
	DataDir        string
	DefaultTier    string
	AutoCloseDelay time.Duration
}

func Load() (*Config, error) {
	autoCloseSeconds, err := strconv.Atoi(getEnv("AUTO_CLOSE_SECONDS", "3"))
	if err != nil || autoCloseSeconds <= 0 {
		return nil, fmt.Errorf("invalid AUTO_CLOSE_SECONDS: %s", getEnv("AUTO_CLOSE_SECONDS", "3"))
	}

	tier := strings.ToLower(getEnv("DEFAULT_TIER", "free"))
	if tier != "free" && tier != "premium" {
		return nil, fmt.Errorf("invalid DEFAULT_TIER: %s (supported: free, premium)", tier)
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		DefaultTier:    tier,
		AutoCloseDelay: time.Duration(autoCloseSeconds) * time.Second,
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
