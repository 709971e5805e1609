package metadata

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

// ErrNotRefreshable is returned for books that did not come from the catalogue.
var ErrNotRefreshable = fmt.Errorf("%w: book has no catalogue source", library.ErrValidation)

// BookStore is the part of the library the refresher reads and patches.
type BookStore interface {
	GetBook(id string) (entities.Book, error)
	UpdateBook(id string, patch library.BookPatch) (entities.Book, error)
	Snapshot() entities.Snapshot
}

// CoverInvalidator drops a cached cover image when the cover URL changes.
type CoverInvalidator interface {
	InvalidateCover(bookID string) error
}

// RefreshResult describes one refreshed book.
type RefreshResult struct {
	Book          entities.Book `json:"book"`
	FieldsUpdated []string      `json:"fields_updated"`
}

// BulkRefreshResult summarizes RefreshAll.
type BulkRefreshResult struct {
	TotalBooks int      `json:"total_books"`
	Refreshed  int      `json:"refreshed"`
	Unchanged  int      `json:"unchanged"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// Refresher re-fetches catalogue metadata for books already in the library.
// The user's rating, comment and progress are never touched.
type Refresher struct {
	fetcher          library.BookFetcher
	store            BookStore
	coverInvalidator CoverInvalidator
	logger           *zap.Logger
}

func NewRefresher(fetcher library.BookFetcher, store BookStore, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{fetcher: fetcher, store: store, logger: logger}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (r *Refresher) SetCoverInvalidator(invalidator CoverInvalidator) {
	r.coverInvalidator = invalidator
}

// RefreshBook fetches the catalogue record of bookID and applies its
// descriptive fields. Nothing is written when nothing changed.
func (r *Refresher) RefreshBook(ctx context.Context, bookID string) (*RefreshResult, error) {
	book, err := r.store.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	if book.Source != entities.BookSourceGoogleBooks {
		return nil, ErrNotRefreshable
	}

	details, err := r.fetcher.FetchBookDetails(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("fetch details: %w", err)
	}
	if details == nil {
		return nil, fmt.Errorf("fetch details: %w", library.ErrNotFound)
	}

	patch := library.DescriptivePatch(*details)
	fields := patch.Diff(book)
	if len(fields) == 0 {
		return &RefreshResult{Book: book, FieldsUpdated: []string{}}, nil
	}

	updated, err := r.store.UpdateBook(bookID, patch)
	if err != nil {
		return nil, err
	}

	if r.coverInvalidator != nil && updated.CoverURL() != book.CoverURL() {
		if err := r.coverInvalidator.InvalidateCover(bookID); err != nil {
			r.logger.Warn("failed to invalidate cover", zap.String("book_id", bookID), zap.Error(err))
		}
	}

	r.logger.Info("book metadata refreshed", zap.String("book_id", bookID), zap.Strings("fields", fields))
	return &RefreshResult{Book: updated, FieldsUpdated: fields}, nil
}

// RefreshAll refreshes every catalogue book in the library. Manual entries
// are counted as skipped. It stops early when ctx is cancelled.
func (r *Refresher) RefreshAll(ctx context.Context) (*BulkRefreshResult, error) {
	snapshot := r.store.Snapshot()
	result := &BulkRefreshResult{TotalBooks: snapshot.TotalBooks()}

	for _, column := range entities.Columns {
		for _, book := range snapshot.Columns[column] {
			if err := ctx.Err(); err != nil {
				result.Errors = append(result.Errors, "operation cancelled")
				return result, err
			}

			if book.Source != entities.BookSourceGoogleBooks {
				result.Skipped++
				continue
			}

			refreshed, err := r.RefreshBook(ctx, book.ID)
			switch {
			case err != nil:
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			case len(refreshed.FieldsUpdated) > 0:
				result.Refreshed++
			default:
				result.Unchanged++
			}
		}
	}
	return result, nil
}
