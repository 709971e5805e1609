package config

// Default locations for durable data
const (
	// DefaultDatabasePath is the sqlite file holding the library snapshot, settings and journal
	DefaultDatabasePath = "./bibliotheque.db"

	// DefaultBackupDir receives the scheduled export documents
	DefaultBackupDir = "./backups"

	// DefaultQuotaBytes caps the serialized library, like the browser storage it replaces
	DefaultQuotaBytes = 5 * 1024 * 1024
)
