// Package config loads process configuration from the environment. cmd
// mains call godotenv first so a local .env participates.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the complete process configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   EngineConfig
}

// DatabaseConfig holds the audit store connection. An empty URL selects
// the in-memory store.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds the RPC listener settings.
type ServerConfig struct {
	Addr string
}

// EngineConfig bounds the worker pool.
type EngineConfig struct {
	PoolSize   int64
	QueueDepth int
	LogLevel   string
}

// Load reads the environment.
func Load() (Config, error) {
	cfg := Config{
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server:   ServerConfig{Addr: envOr("LISTEN_ADDR", ":8080")},
		Engine: EngineConfig{
			PoolSize:   4,
			QueueDepth: 64,
			LogLevel:   envOr("LOG_LEVEL", "info"),
		},
	}
	if v := os.Getenv("POOL_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("POOL_SIZE must be a positive integer, got %q", v)
		}
		cfg.Engine.PoolSize = n
	}
	if v := os.Getenv("QUEUE_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("QUEUE_DEPTH must be a non-negative integer, got %q", v)
		}
		cfg.Engine.QueueDepth = n
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
