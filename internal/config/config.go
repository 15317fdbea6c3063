package config

import (
	"net"
	"os"
	"strings"
)

// Config holds everything the server reads from the environment at startup.
// Redis and Postgres are optional; an empty URL disables the feature that
// depends on it.
type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string
	JWTSecret      string
	RedisURL       string
	DatabaseURL    string
	LogLevel       string
}

// Load reads configuration from the environment with defaults suitable for
// local development.
func Load() Config {
	cfg := Config{
		Host:        getenv("HOST", "0.0.0.0"),
		Port:        getenv("PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
	}
	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS", "localhost:*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	return cfg
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
