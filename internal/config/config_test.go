package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FOLIO_DATA_DIR", filepath.Join(t.TempDir(), "folio-data"))
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEV_MODE", "")
	t.Setenv("SNAPSHOT_SCHEDULE", "")
	t.Setenv("MAINTENANCE_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "@daily", cfg.SnapshotSchedule)
	assert.Equal(t, "@hourly", cfg.MaintenanceSchedule)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "folio-data")
	t.Setenv("FOLIO_DATA_DIR", dataDir)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("SNAPSHOT_SCHEDULE", "0 18 * * 1-5")
	t.Setenv("MAINTENANCE_SCHEDULE", "@weekly")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "0 18 * * 1-5", cfg.SnapshotSchedule)
	assert.Equal(t, "@weekly", cfg.MaintenanceSchedule)
}

func TestLoad_CreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "folio-data")
	t.Setenv("FOLIO_DATA_DIR", dataDir)

	cfg, err := Load()
	require.NoError(t, err)

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDatabasePath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/folio"}
	assert.Equal(t, filepath.Join("/var/lib/folio", "folio.db"), cfg.DatabasePath())
}
