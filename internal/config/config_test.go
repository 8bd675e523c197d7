package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"VITRINE_LOG_LEVEL", "VITRINE_ARCHIVE_TABLE", "VITRINE_SEED_DEMO_DATA",
		"VITRINE_SNAPSHOT_RETENTION", "AWS_PROFILE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, Config{
		LogLevel:          "info",
		ArchiveTable:      "vitrine_snapshots",
		SnapshotRetention: 720 * time.Hour,
	}, cfg)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("VITRINE_LOG_LEVEL", "debug")
	t.Setenv("VITRINE_ARCHIVE_TABLE", "snapshots-dev")
	t.Setenv("VITRINE_SEED_DEMO_DATA", "true")
	t.Setenv("VITRINE_SNAPSHOT_RETENTION", "48h")
	t.Setenv("AWS_PROFILE", "dev")

	cfg := Load()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "snapshots-dev", cfg.ArchiveTable)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, 48*time.Hour, cfg.SnapshotRetention)
	assert.Equal(t, "dev", cfg.AWSProfile)
}

func TestLoad_UnparsableFallsBack(t *testing.T) {
	t.Setenv("VITRINE_SEED_DEMO_DATA", "sometimes")
	t.Setenv("VITRINE_SNAPSHOT_RETENTION", "a month")

	cfg := Load()
	assert.False(t, cfg.SeedDemoData)
	assert.Equal(t, 720*time.Hour, cfg.SnapshotRetention)
}
