package tasks

import (
	"fmt"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

const (
	TypeRefreshBook        = "refresh_book"
	TypeRefreshAllBooks    = "refresh_all_books"
	TypeCleanupAuditEvents = "cleanup_audit_events"
	TypeBackupLibrary      = "backup_library"
)

var ErrUnknownTaskType = fmt.Errorf("%w: unknown task type", library.ErrValidation)

// TypeInfo describes a task type that can be triggered by hand.
type TypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

func Types() []TypeInfo {
	return []TypeInfo{
		{Type: TypeRefreshBook, Description: "Refresh one book's metadata from Google Books", Queue: TypeRefreshBook},
		{Type: TypeRefreshAllBooks, Description: "Refresh the metadata of every catalogue book", Queue: TypeRefreshAllBooks},
		{Type: TypeCleanupAuditEvents, Description: "Delete journal entries past the retention period", Queue: TypeCleanupAuditEvents},
		{Type: TypeBackupLibrary, Description: "Write a backup of the library now", Queue: TypeBackupLibrary},
	}
}

// Params carries the optional arguments of a manually triggered task.
type Params struct {
	BookID        string `json:"book_id,omitempty" form:"book_id"`
	RetentionDays int    `json:"retention_days,omitempty" form:"retention_days"`
}

// Build turns a task type and its parameters into a task ready to enqueue.
func Build(taskType string, params Params) (backlite.Task, error) {
	switch taskType {
	case TypeRefreshBook:
		if params.BookID == "" {
			return nil, fmt.Errorf("%w: book_id is required for %s", library.ErrValidation, taskType)
		}
		return RefreshBookTask{BookID: params.BookID}, nil
	case TypeRefreshAllBooks:
		return RefreshAllBooksTask{}, nil
	case TypeCleanupAuditEvents:
		return CleanupAuditEventsTask{RetentionDays: params.RetentionDays}, nil
	case TypeBackupLibrary:
		return BackupLibraryTask{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
}

// Dependencies are the collaborators the task processors call.
type Dependencies struct {
	Refresher          BookRefresher
	AuditCleaner       AuditEventCleaner
	ArchivePruner      ArchivePruner
	Backupper          Backupper
	AuditRetentionDays int
	Logger             *zap.Logger
}

// Queues returns one queue per task type.
func Queues(deps Dependencies) []backlite.Queue {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return []backlite.Queue{
		NewRefreshBookQueue(deps.Refresher, logger),
		NewRefreshAllBooksQueue(deps.Refresher, logger),
		NewCleanupAuditEventsQueue(deps.AuditCleaner, deps.ArchivePruner, deps.AuditRetentionDays, logger),
		NewBackupLibraryQueue(deps.Backupper, logger),
	}
}
