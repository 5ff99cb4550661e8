package config

import (
	"fmt"
	"os"
	"time"

	"github.com/waterfutures/scadasim/pkg/archive"
)

// Config holds the application configuration
type Config struct {
	LogLevel string        `json:"log_level"`
	Archive  ArchiveConfig `json:"archive"`
}

// ArchiveConfig holds archive configuration
type ArchiveConfig struct {
	Path          string        `json:"path"`
	CacheCapacity int           `json:"cache_capacity"`
	CacheTTL      time.Duration `json:"cache_ttl"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Archive: ArchiveConfig{
			Path:          getEnv("ARCHIVE_PATH", "./data"),
			CacheCapacity: getEnvInt("CACHE_CAPACITY", 64),
			CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
	}
}

// ToArchiveConfig converts to archive.Config
func (c *Config) ToArchiveConfig() *archive.Config {
	return &archive.Config{
		Path:          c.Archive.Path,
		CacheCapacity: c.Archive.CacheCapacity,
		CacheTTL:      c.Archive.CacheTTL,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.Archive.Path == "" {
		return fmt.Errorf("archive path is required")
	}

	if c.Archive.CacheCapacity < 1 {
		return fmt.Errorf("cache capacity must be at least 1")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
