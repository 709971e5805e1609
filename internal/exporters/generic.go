package exporters

import (
	"time"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
	"github.com/ysh4me/bibliotheque-interactif/internal/settingsstore"
	"github.com/ysh4me/bibliotheque-interactif/internal/validation"
)

// LibraryStore is the part of the library used by export and import.
type LibraryStore interface {
	Snapshot() entities.Snapshot
	GetStats() library.Stats
	Import(raw []byte) (validation.Report, error)
}

// SettingsStore reads and replaces the user's preferences.
type SettingsStore interface {
	Get() settingsstore.Settings
	Save(settings settingsstore.Settings) error
}

// Archiver keeps a copy of every imported payload before it is applied.
type Archiver interface {
	ArchiveImport(raw []byte) (string, error)
}

type ExportResult struct {
	BooksExported int       `json:"books_exported"`
	BytesWritten  int64     `json:"bytes_written"`
	Path          string    `json:"path,omitempty"`
	ExportedAt    time.Time `json:"exported_at"`
}

type ImportResult struct {
	Report          validation.Report `json:"report"`
	TotalBooks      int               `json:"total_books"`
	SettingsApplied bool              `json:"settings_applied"`
	ArchivePath     string            `json:"archive_path,omitempty"`
}
