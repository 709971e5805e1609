package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/ysh4me/bibliotheque-interactif/internal/audit"
	"github.com/ysh4me/bibliotheque-interactif/internal/covers"
	"github.com/ysh4me/bibliotheque-interactif/internal/database"
	"github.com/ysh4me/bibliotheque-interactif/internal/database/memory"
	"github.com/ysh4me/bibliotheque-interactif/internal/drag"
	"github.com/ysh4me/bibliotheque-interactif/internal/exporters"
	"github.com/ysh4me/bibliotheque-interactif/internal/http"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
	"github.com/ysh4me/bibliotheque-interactif/internal/metadata"
	"github.com/ysh4me/bibliotheque-interactif/internal/scheduler"
	"github.com/ysh4me/bibliotheque-interactif/internal/settingsstore"
	"github.com/ysh4me/bibliotheque-interactif/internal/tasks"
)

// =============================================================================
// Persistence
// =============================================================================

// Repository implementations
var _ library.Repository = (*database.SnapshotRepository)(nil)
var _ library.Repository = (*memory.Repository)(nil)

// Health checks
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Library State Store
// =============================================================================

var _ http.LibraryStore = (*library.Store)(nil)
var _ drag.Mover = (*library.Store)(nil)
var _ exporters.LibraryStore = (*library.Store)(nil)
var _ metadata.BookStore = (*library.Store)(nil)

// Drag view
var _ drag.View = (*drag.Recorder)(nil)

// =============================================================================
// External Catalogue
// =============================================================================

var _ metadata.Lookup = (*metadata.GoogleBooksClient)(nil)
var _ http.Lookup = (*metadata.Cache)(nil)
var _ library.BookFetcher = (*metadata.Cache)(nil)
var _ library.BookFetcher = (*metadata.GoogleBooksClient)(nil)

// Cover invalidation on refresh
var _ metadata.CoverInvalidator = (*covers.Cache)(nil)
var _ http.CoverGetter = (*covers.Cache)(nil)

// =============================================================================
// Settings, Export and Journal
// =============================================================================

var _ http.SettingsStore = (*settingsstore.SettingsStore)(nil)
var _ exporters.SettingsStore = (*settingsstore.SettingsStore)(nil)
var _ scheduler.StatusRecorder = (*settingsstore.SettingsStore)(nil)

var _ http.DataService = (*exporters.Service)(nil)
var _ scheduler.Exporter = (*exporters.Service)(nil)
var _ exporters.Archiver = (*audit.Auditor)(nil)

var _ http.EventJournal = (*audit.Service)(nil)
var _ http.ActivityLogger = (*audit.Service)(nil)
var _ scheduler.AuditLogger = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ tasks.BookRefresher = (*metadata.Refresher)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.ArchivePruner = (*audit.Auditor)(nil)
var _ tasks.Backupper = (*scheduler.BackupScheduler)(nil)
