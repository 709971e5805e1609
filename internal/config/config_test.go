package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	assert.Equal(t, int32(8190), cfg.HTTP.Port)
	assert.Equal(t, "127.0.0.1:8190", cfg.Addr())
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout())

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultQuotaBytes, cfg.Database.QuotaBytes)

	assert.Equal(t, 12, cfg.Search.MaxResults)
	assert.Equal(t, 5*time.Minute, cfg.Search.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
	assert.NotEmpty(t, cfg.Search.BaseURL)

	assert.Equal(t, filepath.Join(".", "covers"), cfg.Covers.Dir)

	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Backup.Schedule)
	assert.Equal(t, DefaultBackupDir, cfg.Backup.Dir)
	assert.Equal(t, 7, cfg.Backup.Keep)

	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.Tasks.CleanupInterval)

	assert.Equal(t, 30, cfg.Audit.RetentionDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("DATABASE_PATH", "/data/library.db")
	t.Setenv("DATABASE_QUOTA_BYTES", "0")
	t.Setenv("SEARCH_CACHE_TTL", "30s")
	t.Setenv("BACKUP_ENABLED", "true")
	t.Setenv("BACKUP_KEEP", "3")
	t.Setenv("TASKS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := NewConfig()

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, "/data/library.db", cfg.Database.Path)
	assert.Equal(t, 0, cfg.Database.QuotaBytes)
	assert.Equal(t, 30*time.Second, cfg.Search.CacheTTL)
	assert.Equal(t, "/data/covers", cfg.Covers.Dir)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, 3, cfg.Backup.Keep)
	assert.False(t, cfg.Tasks.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestNewConfig_ExplicitCoversDir(t *testing.T) {
	t.Setenv("COVERS_DIR", "/var/cache/covers")

	cfg := NewConfig()
	assert.Equal(t, "/var/cache/covers", cfg.Covers.Dir)
}
