package library

import (
	"context"
	"fmt"
	"time"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// Promote turns catalogue details into a library record for column: external
// metadata is kept, the user fields start empty and both date stamps are now.
func Promote(details entities.Book, column entities.ColumnID, now time.Time) entities.Book {
	b := details.Clone()
	b.Status = column
	b.Rating = 0
	b.Comment = ""
	b.Progress = 0
	b.DateAdded = now
	b.DateStatusChanged = now
	b.DateModified = time.Time{}
	if b.Source == "" {
		b.Source = entities.BookSourceGoogleBooks
	}
	if len(b.Authors) == 0 {
		b.Authors = []string{entities.UnknownAuthor}
	}
	return b
}

// AddFromLookup fetches externalID through fetcher and adds the promoted
// record to column. Lookup failures other than not-found are returned as is.
func (s *Store) AddFromLookup(ctx context.Context, fetcher BookFetcher, externalID string, column entities.ColumnID) (entities.Book, error) {
	const op = "add_from_lookup"
	if !column.Valid() {
		return entities.Book{}, &OpError{Op: op, BookID: externalID, Err: fmt.Errorf("%w: %q", ErrUnknownColumn, column)}
	}
	if externalID == "" {
		return entities.Book{}, &OpError{Op: op, Err: fmt.Errorf("%w: external id is required", ErrInvalidRecord)}
	}
	if _, err := s.GetBook(externalID); err == nil {
		return entities.Book{}, &OpError{Op: op, BookID: externalID, Err: ErrDuplicateBook}
	}

	details, err := fetcher.FetchBookDetails(ctx, externalID)
	if err != nil {
		return entities.Book{}, &OpError{Op: op, BookID: externalID, Err: err}
	}
	if details == nil {
		return entities.Book{}, &OpError{Op: op, BookID: externalID, Err: ErrNotFound}
	}

	record := Promote(*details, column, s.now())
	if record.ID == "" {
		record.ID = externalID
	}
	return s.AddBook(column, record)
}
