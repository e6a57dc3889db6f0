package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	SigningKeyBase64 string
	SigningKeyHex    string
	SessionTTLHours  int

	RateLimitRequests      int
	RateLimitWindowSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		SigningKeyBase64:       os.Getenv("SIGNING_KEY_BASE64"),
		SigningKeyHex:          os.Getenv("SIGNING_KEY_HEX"),
		SessionTTLHours:        envIntDefault("SESSION_TTL_HOURS", 24),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// SessionTTL is the fixed credential lifetime. Not negotiable per call.
func (c Config) SessionTTL() time.Duration {
	hours := c.SessionTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// RateLimitWindow returns the issue-throttle window.
func (c Config) RateLimitWindow() time.Duration {
	secs := c.RateLimitWindowSeconds
	if secs <= 0 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}
