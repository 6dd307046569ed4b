// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for the database (always absolute)
	LogLevel            string
	DevMode             bool
	SnapshotSchedule    string // Cron schedule for balance snapshots
	MaintenanceSchedule string // Cron schedule for database maintenance
}

// Load reads configuration from environment variables, with a .env file
// as fallback.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("FOLIO_DATA_DIR", "")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".folio")
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		SnapshotSchedule:    getEnv("SNAPSHOT_SCHEDULE", "@daily"),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "@hourly"),
	}

	return cfg, nil
}

// DatabasePath returns the path of the portfolio database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "folio.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
