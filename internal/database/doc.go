// Package database provides the sqlite data access layer.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── snapshots.go     # Library snapshot persistence (library.Repository)
//	├── settings/        # Key/value settings
//	├── audit/           # Library event journal
//	└── memory/          # In-memory library.Repository for tests
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bibliotheque.db", logger)
//	snapshots := database.NewSnapshotRepository(db.DB, 5<<20, logger)
//	settingsRepo := settings.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
// # Quota
//
// The snapshot repository refuses payloads larger than its byte quota and
// reports sqlite "database or disk is full" errors the same way, both as
// library.ErrQuotaExceeded.
package database
