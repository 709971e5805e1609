package library

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/validation"
)

const (
	ReasonImport = "import"
	ReasonReset  = "reset"
	ReasonClear  = "clear"
)

// Import replaces the whole library with the sanitized payload. The payload
// uses the persisted snapshot layout. The previous library is kept when the
// new one cannot be saved.
func (s *Store) Import(raw []byte) (validation.Report, error) {
	snapshot, report := validation.SanitizeSnapshotReport(raw)
	if report.Unreadable {
		return report, &OpError{Op: "import", Err: ErrInvalidRecord}
	}

	if err := s.Replace(snapshot); err != nil {
		return report, err
	}
	return report, nil
}

// Replace swaps the whole library for snapshot, which is sanitized again so
// the uniqueness and status invariants hold whatever the caller built.
func (s *Store) Replace(snapshot entities.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return &OpError{Op: "import", Err: fmt.Errorf("%w: %w", ErrInvalidRecord, err)}
	}
	return s.replace("import", ReasonImport, validation.SanitizeSnapshot(data))
}

// ResetToDefault empties the four columns and persists the empty library.
func (s *Store) ResetToDefault() error {
	return s.replace("reset", ReasonReset, entities.NewSnapshot())
}

// ClearAll removes the persisted payload and leaves an empty library in memory.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	if err := s.repo.Clear(); err != nil {
		s.mu.Unlock()
		return s.failed("clear", "", persistenceError(err))
	}
	s.snapshot = entities.NewSnapshot()
	s.publish(Event{Type: EventLibraryReplaced, Reason: ReasonClear, At: s.now()})
	s.mu.Unlock()

	s.logger.Info("library cleared")
	return nil
}

func (s *Store) replace(op, reason string, snapshot entities.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(snapshot); err != nil {
		return s.failed(op, "", err)
	}
	s.publish(Event{Type: EventLibraryReplaced, Reason: reason, At: s.now()})
	s.logger.Info("library replaced", zap.String("op", op), zap.Int("total_books", snapshot.TotalBooks()))
	return nil
}
