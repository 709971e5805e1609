package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Search
		Covers
		Backup
		Tasks
		Audit
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path       string
		QuotaBytes int // 0 disables the quota
	}
	Search struct {
		BaseURL    string
		APIKey     string
		MaxResults int
		CacheTTL   time.Duration
		Timeout    time.Duration
	}
	Covers struct {
		Dir string // Defaults to "covers" next to the database
	}
	Backup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
		Keep     int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		Dir           string
		RetentionDays int // Days to keep journal events (default: 30)
	}
	Log struct {
		Level       string
		Development bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_quota_bytes", DefaultQuotaBytes)

	// Google Books lookup
	v.SetDefault("google_books_base_url", "https://www.googleapis.com/books/v1/volumes")
	v.SetDefault("google_books_api_key", "")
	v.SetDefault("search_max_results", 12)
	v.SetDefault("search_cache_ttl", "5m")
	v.SetDefault("search_timeout", "10s")

	v.SetDefault("covers_dir", "")

	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *")
	v.SetDefault("backup_dir", DefaultBackupDir)
	v.SetDefault("backup_keep", 7)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	cfg := &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:       v.GetString("DATABASE_PATH"),
			QuotaBytes: v.GetInt("DATABASE_QUOTA_BYTES"),
		},
		Search: Search{
			BaseURL:    v.GetString("GOOGLE_BOOKS_BASE_URL"),
			APIKey:     v.GetString("GOOGLE_BOOKS_API_KEY"),
			MaxResults: v.GetInt("SEARCH_MAX_RESULTS"),
			CacheTTL:   v.GetDuration("SEARCH_CACHE_TTL"),
			Timeout:    v.GetDuration("SEARCH_TIMEOUT"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Backup: Backup{
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Dir:      v.GetString("BACKUP_DIR"),
			Keep:     v.GetInt("BACKUP_KEEP"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
	}

	if cfg.Covers.Dir == "" {
		cfg.Covers.Dir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	}
	return cfg
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(int(c.HTTP.Port)))
}

// ShutdownTimeout is how long in-flight requests get on shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Global.ShutdownTimeoutInSeconds) * time.Second
}
