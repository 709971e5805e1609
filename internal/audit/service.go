package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/database/audit"
	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.logger.Warn("failed to log audit event",
				zap.String("event_type", string(event.EventType)),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Consume journals library events until ctx is done or the channel closes.
func (s *Service) Consume(ctx context.Context, events <-chan library.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := s.Log(FromLibraryEvent(event)); err != nil {
				s.logger.Warn("failed to journal library event",
					zap.String("type", string(event.Type)),
					zap.String("book_id", event.BookID),
					zap.Error(err))
			}
		}
	}
}

// FromLibraryEvent converts a committed library change into a journal entry.
func FromLibraryEvent(event library.Event) *entities.AuditEvent {
	entry := &entities.AuditEvent{
		EventType:  entities.AuditEventType(event.Type),
		BookID:     event.BookID,
		FromColumn: event.From,
		ToColumn:   event.To,
		Status:     entities.AuditStatusSuccess,
		CreatedAt:  event.At,
	}

	title := event.BookID
	if event.Book != nil {
		title = event.Book.Title
	}

	switch event.Type {
	case library.EventBookAdded:
		entry.Action = "book_add"
		entry.Description = fmt.Sprintf("Added %q to %s", title, event.To.Title())
	case library.EventBookMoved:
		entry.Action = "book_move"
		entry.Description = fmt.Sprintf("Moved %q from %s to %s", title, event.From.Title(), event.To.Title())
	case library.EventBookUpdated:
		entry.Action = "book_update"
		entry.Description = fmt.Sprintf("Updated %q", title)
		entry.Metadata = marshalMetadata(map[string]any{"fields": event.Fields})
	case library.EventBookDeleted:
		entry.Action = "book_delete"
		entry.Description = fmt.Sprintf("Deleted %q from %s", title, event.From.Title())
	case library.EventLibraryReplaced:
		entry.Action = "library_" + event.Reason
		entry.Description = "Library replaced (" + event.Reason + ")"
	default:
		entry.Action = string(event.Type)
	}

	entry.Description = truncate(entry.Description, 500)
	return entry
}

// LogImport records an import event.
func (s *Service) LogImport(description string, booksCount, entriesDropped int, archive string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "json_import",
		Description: description,
		Status:      entities.AuditStatusSuccess,
		Metadata: marshalMetadata(map[string]any{
			"books_count":     booksCount,
			"entries_dropped": entriesDropped,
			"archive":         archive,
		}),
	}
	s.fail(event, err)
	s.LogAsync(event)
}

// LogExport records an export event.
func (s *Service) LogExport(format string, booksCount int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventExport,
		Action:      format + "_export",
		Description: fmt.Sprintf("Exported %d books", booksCount),
		Status:      entities.AuditStatusSuccess,
	}
	s.fail(event, err)
	s.LogAsync(event)
}

// LogSettings records a settings change event.
func (s *Service) LogSettings(action, description string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogBackup records a scheduled or manual backup.
func (s *Service) LogBackup(path string, booksCount int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventBackup,
		Action:      "backup_write",
		Description: fmt.Sprintf("Backed up %d books", booksCount),
		Status:      entities.AuditStatusSuccess,
		Metadata:    marshalMetadata(map[string]any{"path": path}),
	}
	s.fail(event, err)
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// GetEventsForBook retrieves the history of one book.
func (s *Service) GetEventsForBook(bookID string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsForBook(bookID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func (s *Service) fail(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
}

func marshalMetadata(metadata map[string]any) string {
	data, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
