// Package library owns the user's book collection: four ordered columns with
// globally unique book ids, persisted as a whole snapshot on every change.
//
// # Usage
//
//	store := library.New(repo, library.WithLogger(logger))
//	if _, err := store.Load(); err != nil {
//		// durable storage could not be read; the store starts empty
//	}
//	book, err := store.AddBook(entities.ColumnToRead, entities.Book{ID: "b1", Title: "Dune"})
//	if library.Kind(err) == library.KindQuotaExceeded {
//		// ask the user to free some space
//	}
package library

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/validation"
)

// Store is safe for concurrent use. Mutations are serialized and each one is
// either fully persisted or not applied at all.
type Store struct {
	mu       sync.RWMutex
	repo     Repository
	snapshot entities.Snapshot

	events *eventBus
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for date stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store holding the empty default snapshot. Call Load to read
// the persisted library.
func New(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		snapshot: entities.NewSnapshot(),
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = newEventBus(s.logger)
	return s
}

// NewBookID returns a fresh identifier for manually entered books.
func NewBookID() string {
	return uuid.NewString()
}

// Load replaces the in-memory library with the sanitized persisted snapshot.
// Corrupt data never fails the load; when sanitizing discarded anything the
// cleaned snapshot is written back. A payload that does not parse at all is
// left untouched in the repository while the store starts empty. An error is returned only when the
// repository cannot be read, in which case the store holds the empty default.
func (s *Store) Load() (validation.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.Load()
	if err != nil {
		s.snapshot = entities.NewSnapshot()
		return validation.Report{}, &OpError{Op: "load", Err: persistenceError(err)}
	}
	if raw == nil {
		s.snapshot = entities.NewSnapshot()
		return validation.Report{}, nil
	}

	snapshot, report := validation.SanitizeSnapshotReport(raw)
	s.snapshot = snapshot

	switch {
	case report.Unreadable:
		// Keep the stored bytes; they are only replaced by the next change.
		s.logger.Warn("persisted library is unreadable, starting empty", zap.Int("size_bytes", len(raw)))
	case report.Changed():
		s.logger.Warn("persisted library needed cleanup",
			zap.Int("entries_dropped", report.EntriesDropped),
			zap.Int("duplicates_dropped", report.DuplicatesDropped),
			zap.Int("columns_reset", len(report.ColumnsReset)),
			zap.Int("fields_reset", report.FieldsReset))
		if err := s.commit(snapshot.Clone()); err != nil {
			s.logger.Warn("failed to persist cleaned library", zap.Error(err))
		}
	}

	s.logger.Info("library loaded", zap.Int("total_books", s.snapshot.TotalBooks()))
	return report, nil
}

// Subscribe returns a channel of committed library events. The buffer size
// defaults to 64 when buffer <= 0. Call cancel to unsubscribe; it closes the
// channel.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	return s.events.subscribe(buffer)
}

// Snapshot returns a deep copy of the committed library.
func (s *Store) Snapshot() entities.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// Column returns a copy of the books in column, in order.
func (s *Store) Column(column entities.ColumnID) ([]entities.Book, error) {
	if !column.Valid() {
		return nil, &OpError{Op: "column", Err: fmt.Errorf("%w: %q", ErrUnknownColumn, column)}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	books := s.snapshot.Columns[column]
	out := make([]entities.Book, len(books))
	for i, b := range books {
		out[i] = b.Clone()
	}
	return out, nil
}

// GetBook returns the book with id from whichever column holds it.
func (s *Store) GetBook(id string) (entities.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	column, index, ok := s.snapshot.Find(id)
	if !ok {
		return entities.Book{}, &OpError{Op: "get", BookID: id, Err: ErrNotFound}
	}
	return s.snapshot.Columns[column][index].Clone(), nil
}

func (s *Store) TotalBooks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.TotalBooks()
}

// AddBook appends book to column. The id must not exist anywhere in the
// library. Status is set to column; dateAdded and dateStatusChanged are
// stamped when absent.
func (s *Store) AddBook(column entities.ColumnID, book entities.Book) (entities.Book, error) {
	const op = "add"
	if !column.Valid() {
		return entities.Book{}, &OpError{Op: op, BookID: book.ID, Err: fmt.Errorf("%w: %q", ErrUnknownColumn, column)}
	}
	if err := checkRecord(book); err != nil {
		return entities.Book{}, &OpError{Op: op, BookID: book.ID, Err: err}
	}

	s.mu.Lock()
	if _, _, exists := s.snapshot.Find(book.ID); exists {
		s.mu.Unlock()
		return entities.Book{}, &OpError{Op: op, BookID: book.ID, Err: ErrDuplicateBook}
	}

	now := s.now()
	added := book.Clone()
	added.Status = column
	if added.DateAdded.IsZero() {
		added.DateAdded = now
	}
	if added.DateStatusChanged.IsZero() {
		added.DateStatusChanged = now
	}
	if len(added.Authors) == 0 {
		added.Authors = []string{entities.UnknownAuthor}
	}
	if added.Source == "" {
		added.Source = entities.BookSourceManual
	}

	working := s.snapshot.Clone()
	working.Columns[column] = append(working.Columns[column], added)
	if err := s.commit(working); err != nil {
		s.mu.Unlock()
		return entities.Book{}, s.failed(op, book.ID, err)
	}
	s.publish(Event{Type: EventBookAdded, BookID: added.ID, Book: bookRef(added), To: column, At: now})
	s.mu.Unlock()

	s.logger.Debug("book added", zap.String("book_id", added.ID), zap.String("column", string(column)))
	return added.Clone(), nil
}

// MoveBook transfers the book with id from one column to the end of another,
// updating status and dateStatusChanged. Moving within the same column is a
// no-op.
func (s *Store) MoveBook(id string, from, to entities.ColumnID) (entities.Book, error) {
	const op = "move"
	for _, column := range []entities.ColumnID{from, to} {
		if !column.Valid() {
			return entities.Book{}, &OpError{Op: op, BookID: id, Err: fmt.Errorf("%w: %q", ErrUnknownColumn, column)}
		}
	}

	s.mu.Lock()
	index := indexOf(s.snapshot.Columns[from], id)
	if index < 0 {
		s.mu.Unlock()
		return entities.Book{}, &OpError{Op: op, BookID: id, Err: fmt.Errorf("%w: not in column %q", ErrNotFound, from)}
	}
	if from == to {
		book := s.snapshot.Columns[from][index].Clone()
		s.mu.Unlock()
		return book, nil
	}
	// Global uniqueness means the destination cannot already hold the id.
	if indexOf(s.snapshot.Columns[to], id) >= 0 {
		s.mu.Unlock()
		return entities.Book{}, &OpError{Op: op, BookID: id, Err: ErrDuplicateBook}
	}

	now := s.now()
	working := s.snapshot.Clone()
	moved := working.Columns[from][index]
	working.Columns[from] = append(working.Columns[from][:index], working.Columns[from][index+1:]...)
	moved.Status = to
	moved.DateStatusChanged = now
	working.Columns[to] = append(working.Columns[to], moved)

	if err := s.commit(working); err != nil {
		s.mu.Unlock()
		return entities.Book{}, s.failed(op, id, err)
	}
	s.publish(Event{Type: EventBookMoved, BookID: id, Book: bookRef(moved), From: from, To: to, At: now})
	s.mu.Unlock()

	s.logger.Debug("book moved",
		zap.String("book_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return moved.Clone(), nil
}

// UpdateBook merges patch into the book with id, wherever it lives, and stamps
// dateModified.
func (s *Store) UpdateBook(id string, patch BookPatch) (entities.Book, error) {
	const op = "update"
	if err := patch.validate(); err != nil {
		return entities.Book{}, &OpError{Op: op, BookID: id, Err: err}
	}

	s.mu.Lock()
	column, index, ok := s.snapshot.Find(id)
	if !ok {
		s.mu.Unlock()
		return entities.Book{}, &OpError{Op: op, BookID: id, Err: ErrNotFound}
	}

	now := s.now()
	working := s.snapshot.Clone()
	updated := working.Columns[column][index]
	fields := patch.apply(&updated)
	updated.DateModified = now
	working.Columns[column][index] = updated

	if err := s.commit(working); err != nil {
		s.mu.Unlock()
		return entities.Book{}, s.failed(op, id, err)
	}
	s.publish(Event{Type: EventBookUpdated, BookID: id, Book: bookRef(updated), To: column, Fields: fields, At: now})
	s.mu.Unlock()

	return updated.Clone(), nil
}

// DeleteBook removes the book with id. With a non-empty column only that
// column is searched; otherwise the first match across all columns is removed.
func (s *Store) DeleteBook(id string, column entities.ColumnID) (entities.Book, error) {
	const op = "delete"
	if column != "" && !column.Valid() {
		return entities.Book{}, &OpError{Op: op, BookID: id, Err: fmt.Errorf("%w: %q", ErrUnknownColumn, column)}
	}

	s.mu.Lock()
	working := s.snapshot.Clone()
	var (
		removed entities.Book
		from    entities.ColumnID
		found   bool
	)
	for _, col := range entities.Columns {
		if column != "" && col != column {
			continue
		}
		if i := indexOf(working.Columns[col], id); i >= 0 {
			removed = working.Columns[col][i]
			working.Columns[col] = append(working.Columns[col][:i], working.Columns[col][i+1:]...)
			from, found = col, true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return entities.Book{}, &OpError{Op: op, BookID: id, Err: ErrNotFound}
	}

	if err := s.commit(working); err != nil {
		s.mu.Unlock()
		return entities.Book{}, s.failed(op, id, err)
	}
	s.publish(Event{Type: EventBookDeleted, BookID: id, Book: bookRef(removed), From: from, At: s.now()})
	s.mu.Unlock()

	return removed, nil
}

// commit persists working and makes it the committed snapshot. The caller
// holds s.mu. On failure the committed snapshot is left untouched.
func (s *Store) commit(working entities.Snapshot) error {
	working.Metadata = entities.SnapshotMetadata{
		LastSaved:  s.now(),
		Version:    entities.SnapshotVersion,
		TotalBooks: working.TotalBooks(),
	}

	data, err := json.Marshal(working)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", ErrPersistence, err)
	}
	if err := s.repo.Save(data); err != nil {
		return persistenceError(err)
	}

	s.snapshot = working
	return nil
}

func (s *Store) failed(op, id string, err error) error {
	s.logger.Warn("library change not persisted",
		zap.String("op", op),
		zap.String("book_id", id),
		zap.String("kind", string(Kind(err))),
		zap.Error(err))
	return &OpError{Op: op, BookID: id, Err: err}
}

// publish hands event to subscribers. Callers hold s.mu so events leave in
// commit order; publishing never blocks.
func (s *Store) publish(event Event) {
	s.events.publish(event)
}

func checkRecord(b entities.Book) error {
	if !validation.IsValidBook(b) {
		return fmt.Errorf("%w: id and title are required", ErrInvalidRecord)
	}
	if b.Rating < 0 || b.Rating > entities.MaxRating {
		return fmt.Errorf("%w: rating must be between 0 and %d", ErrInvalidRecord, entities.MaxRating)
	}
	if b.Progress < 0 || b.Progress > entities.MaxProgress {
		return fmt.Errorf("%w: progress must be between 0 and %d", ErrInvalidRecord, entities.MaxProgress)
	}
	return nil
}

func bookRef(b entities.Book) *entities.Book {
	c := b.Clone()
	return &c
}

func indexOf(books []entities.Book, id string) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
