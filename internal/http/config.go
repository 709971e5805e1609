package http

import (
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/drag"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Library  LibraryStore
	Settings SettingsStore
	Database Pinger

	// Catalogue search (optional)
	Lookup Lookup

	// Drag session
	Drag     *drag.Coordinator
	DragView *drag.Recorder

	// Export, import and journal (optional)
	Data     DataService
	Journal  EventJournal
	Activity ActivityLogger

	// Cover caching (optional)
	CoverCache CoverGetter

	// Task queue client (optional)
	TaskQueue TaskQueue

	// Application info
	Version string

	Logger *zap.Logger
}
