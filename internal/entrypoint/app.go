package entrypoint

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/audit"
	"github.com/ysh4me/bibliotheque-interactif/internal/config"
	"github.com/ysh4me/bibliotheque-interactif/internal/database"
	auditrepo "github.com/ysh4me/bibliotheque-interactif/internal/database/audit"
	"github.com/ysh4me/bibliotheque-interactif/internal/database/settings"
	"github.com/ysh4me/bibliotheque-interactif/internal/exporters"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
	"github.com/ysh4me/bibliotheque-interactif/internal/settingsstore"
)

// App holds the components shared by the server and the CLI commands.
type App struct {
	DB       *database.Database
	Store    *library.Store
	Settings *settingsstore.SettingsStore
	Journal  *audit.Service
	Auditor  *audit.Auditor
	Data     *exporters.Service
	Logger   *zap.Logger
}

// Open connects the database and loads the library. A corrupt payload is
// repaired on load; only an unreadable database is an error.
func Open(cfg *config.Config, version string, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := database.NewSnapshotRepository(db.DB, cfg.Database.QuotaBytes, logger)
	store := library.New(repo, library.WithLogger(logger))
	report, err := store.Load()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	if report.Changed() {
		logger.Warn("stored library was repaired on load",
			zap.Bool("unreadable", report.Unreadable),
			zap.Int("entries_dropped", report.EntriesDropped),
			zap.Int("duplicates_dropped", report.DuplicatesDropped),
			zap.Int("status_repaired", report.StatusRepaired))
	}
	logger.Info("library loaded",
		zap.String("path", cfg.Database.Path),
		zap.Int("books", store.TotalBooks()))

	prefs := settingsstore.New(settings.NewRepository(db.DB), logger)
	auditor := audit.NewAuditor(cfg.Audit.Dir, logger)
	journal := audit.NewService(auditrepo.NewRepository(db.DB), logger)

	data := exporters.NewService(store, prefs, version,
		exporters.WithArchiver(auditor),
		exporters.WithLogger(logger))

	return &App{
		DB:       db,
		Store:    store,
		Settings: prefs,
		Journal:  journal,
		Auditor:  auditor,
		Data:     data,
		Logger:   logger,
	}, nil
}

// Close waits for pending journal writes and closes the database.
func (a *App) Close() error {
	a.Journal.Wait()
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
