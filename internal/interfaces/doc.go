// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Persistence
//
//   - library.Repository: Load/Save/Clear of the serialized library (internal/library/ports.go).
//     Implemented by database.SnapshotRepository (sqlite row) and memory.Repository (tests).
//
// ## Library State Store
//
//   - http.LibraryStore: Book and column endpoints (internal/http/stores.go)
//   - drag.Mover: What the drag coordinator needs to commit a drop (internal/drag/coordinator.go)
//   - drag.View: Receives the speculative placeholder and reload notifications (internal/drag/view.go)
//   - exporters.LibraryStore: Snapshot and Replace for export/import (internal/exporters/generic.go)
//   - metadata.BookStore: Descriptive updates from the refresher (internal/metadata/refresher.go)
//
// ## External Catalogue
//
//   - metadata.Lookup: Search and FetchBookDetails against Google Books (internal/metadata/googlebooks.go)
//   - library.BookFetcher: Resolves an external id when a search result is promoted (internal/library/ports.go)
//   - metadata.CoverInvalidator: Drops cached covers after a refresh (internal/metadata/refresher.go)
//
// ## Background Work
//
//   - tasks.BookRefresher, tasks.AuditEventCleaner, tasks.Backupper: Task processors (internal/tasks)
//   - scheduler.Exporter, scheduler.StatusRecorder, scheduler.AuditLogger: Backup schedule (internal/scheduler)
//
// # Adding a New Catalogue Provider
//
// To search another source of book metadata (e.g., Open Library):
//
//  1. Implement metadata.Lookup in internal/metadata/
//
//     type OpenLibraryClient struct {
//     httpClient *http.Client
//     }
//
//     func (c *OpenLibraryClient) Search(ctx context.Context, query string, opts SearchOptions) ([]entities.Book, error)
//     func (c *OpenLibraryClient) FetchBookDetails(ctx context.Context, id string) (*entities.Book, error)
//
//     var _ Lookup = (*OpenLibraryClient)(nil)
//
//  2. Wrap it in metadata.NewCache in entrypoint.go
//
// # Adding a New Background Task
//
//  1. Define the task type and its backlite.QueueConfig in internal/tasks/
//  2. Add it to tasks.Types, tasks.Build and tasks.Queues
//  3. It becomes available at POST /api/tasks/:type/run
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
