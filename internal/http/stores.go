package http

import (
	"context"
	"io"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/exporters"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
	"github.com/ysh4me/bibliotheque-interactif/internal/metadata"
	"github.com/ysh4me/bibliotheque-interactif/internal/settingsstore"
)

// This file consolidates the interfaces HTTP controllers depend on. Each
// controller takes only what it uses.

// LibraryStore is the library store as seen by the book endpoints.
type LibraryStore interface {
	Snapshot() entities.Snapshot
	Column(column entities.ColumnID) ([]entities.Book, error)
	GetBook(id string) (entities.Book, error)
	AddBook(column entities.ColumnID, book entities.Book) (entities.Book, error)
	MoveBook(id string, from, to entities.ColumnID) (entities.Book, error)
	UpdateBook(id string, patch library.BookPatch) (entities.Book, error)
	DeleteBook(id string, column entities.ColumnID) (entities.Book, error)
	SearchBooks(query string) []library.SearchHit
	GetStats() library.Stats
	TotalBooks() int
	AddFromLookup(ctx context.Context, fetcher library.BookFetcher, externalID string, column entities.ColumnID) (entities.Book, error)
	ResetToDefault() error
	ClearAll() error
}

// Lookup searches the external catalogue.
type Lookup interface {
	Search(ctx context.Context, query string, opts metadata.SearchOptions) ([]entities.Book, error)
	FetchBookDetails(ctx context.Context, externalID string) (*entities.Book, error)
}

// SettingsStore reads and writes the user preferences.
type SettingsStore interface {
	Get() settingsstore.Settings
	GetInfo() settingsstore.SettingsInfo
	Save(settings settingsstore.Settings) error
	Reset() error
	ClearAll() error
}

// DataService exports and imports whole documents.
type DataService interface {
	Export(w io.Writer, format string) (exporters.ExportResult, error)
	Import(raw []byte) (*exporters.ImportResult, error)
}

// EventJournal reads the journal of library changes.
type EventJournal interface {
	GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsForBook(bookID string, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// ActivityLogger records user actions that do not go through the store.
type ActivityLogger interface {
	LogImport(description string, booksCount, entriesDropped int, archive string, err error)
	LogExport(format string, booksCount int, err error)
	LogSettings(action, description string)
}

// CoverGetter returns a local path for a book cover, downloading it if needed.
type CoverGetter interface {
	GetCover(ctx context.Context, bookID string, coverURL string) (string, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger checks that the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type nopActivity struct{}

func (nopActivity) LogImport(string, int, int, string, error) {}
func (nopActivity) LogExport(string, int, error)              {}
func (nopActivity) LogSettings(string, string)                {}

// requestTimeout bounds calls to the external catalogue.
const requestTimeout = 15 * time.Second
