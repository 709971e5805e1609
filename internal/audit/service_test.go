package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/ysh4me/bibliotheque-interactif/internal/database/audit"
	"github.com/ysh4me/bibliotheque-interactif/internal/database/memory"
	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	repo := auditRepo.NewRepository(db)
	return NewService(repo, nil), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "test_import",
		Description: "Test import event",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "test_import", saved.Action)
}

func TestService_LogImport(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful import", func(t *testing.T) {
		svc.LogImport("Imported 5 books", 5, 1, "abc.json", nil)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ? AND status = ?", "json_import", entities.AuditStatusSuccess).First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, "Imported 5 books", event.Description)
		assert.Contains(t, event.Metadata, `"books_count":5`)
		assert.Contains(t, event.Metadata, `"archive":"abc.json"`)
	})

	t.Run("failed import", func(t *testing.T) {
		svc.LogImport("Import failed", 0, 0, "", errors.New("storage full"))
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ? AND status = ?", "json_import", entities.AuditStatusFailed).First(&event).Error
		require.NoError(t, err)
		assert.Contains(t, event.ErrorMsg, "storage full")
	})
}

func TestService_LogExportAndBackup(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogExport("markdown", 3, nil)
	svc.LogBackup("/backups/backup-20240315-030000.json", 3, nil)
	svc.LogSettings("settings_reset", "Settings reset to defaults")
	svc.Wait()

	var export entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "markdown_export").First(&export).Error)
	assert.Equal(t, "Exported 3 books", export.Description)

	var backup entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventBackup).First(&backup).Error)
	assert.Contains(t, backup.Metadata, "backup-20240315-030000.json")

	var settings entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "settings_reset").First(&settings).Error)
	assert.Equal(t, entities.AuditEventSettings, settings.EventType)
}

func TestFromLibraryEvent(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	book := &entities.Book{ID: "b1", Title: "Dune"}

	tests := []struct {
		name        string
		event       library.Event
		action      string
		description string
	}{
		{
			name:        "added",
			event:       library.Event{Type: library.EventBookAdded, BookID: "b1", Book: book, To: entities.ColumnToRead, At: at},
			action:      "book_add",
			description: `Added "Dune" to À lire`,
		},
		{
			name:        "moved",
			event:       library.Event{Type: library.EventBookMoved, BookID: "b1", Book: book, From: entities.ColumnToRead, To: entities.ColumnRead, At: at},
			action:      "book_move",
			description: `Moved "Dune" from À lire to Lu`,
		},
		{
			name:        "deleted without book",
			event:       library.Event{Type: library.EventBookDeleted, BookID: "b1", From: entities.ColumnFavorites, At: at},
			action:      "book_delete",
			description: `Deleted "b1" from Favoris`,
		},
		{
			name:        "replaced",
			event:       library.Event{Type: library.EventLibraryReplaced, Reason: library.ReasonImport, At: at},
			action:      "library_import",
			description: "Library replaced (import)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := FromLibraryEvent(tt.event)
			assert.Equal(t, tt.action, entry.Action)
			assert.Equal(t, tt.description, entry.Description)
			assert.Equal(t, entities.AuditEventType(tt.event.Type), entry.EventType)
			assert.Equal(t, at, entry.CreatedAt)
			assert.Equal(t, entities.AuditStatusSuccess, entry.Status)
		})
	}

	updated := FromLibraryEvent(library.Event{Type: library.EventBookUpdated, BookID: "b1", Book: book, Fields: []string{"rating"}, At: at})
	assert.JSONEq(t, `{"fields":["rating"]}`, updated.Metadata)
}

func TestService_Consume(t *testing.T) {
	svc, _ := setupTestService(t)
	store := library.New(memory.NewRepository())
	_, err := store.Load()
	require.NoError(t, err)

	events, cancel := store.Subscribe(16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Consume(context.Background(), events)
	}()

	_, err = store.AddBook(entities.ColumnToRead, entities.Book{ID: "b1", Title: "Dune"})
	require.NoError(t, err)
	_, err = store.MoveBook("b1", entities.ColumnToRead, entities.ColumnReading)
	require.NoError(t, err)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after the channel closed")
	}

	history, total, err := svc.GetEventsForBook("b1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, history, 2)
	actions := []string{history[0].Action, history[1].Action}
	assert.ElementsMatch(t, []string{"book_add", "book_move"}, actions)

	moves, _, err := svc.GetEventsByType(entities.AuditEventBookMoved, 10, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entities.ColumnToRead, moves[0].FromColumn)
	assert.Equal(t, entities.ColumnReading, moves[0].ToColumn)
}

func TestService_GetEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := 0; i < 5; i++ {
		err := svc.Log(&entities.AuditEvent{
			EventType: entities.AuditEventImport,
			Action:    "test",
			Status:    entities.AuditStatusSuccess,
		})
		require.NoError(t, err)
	}

	events, total, err := svc.GetEvents(3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, events, 3)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	oldEvent := &entities.AuditEvent{
		EventType: entities.AuditEventImport,
		Action:    "old",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, db.Create(oldEvent).Error)

	newEvent := &entities.AuditEvent{
		EventType: entities.AuditEventBookDeleted,
		Action:    "new",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(newEvent).Error)

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []entities.AuditEvent
	db.Find(&remaining)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Action)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, truncate(tt.input, tt.maxLen))
	}
}
