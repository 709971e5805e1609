package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

const fallbackRetentionDays = 30

// AuditEventCleaner deletes journal entries recorded before the retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// ArchivePruner deletes archived import payloads older than the retention window.
type ArchivePruner interface {
	PruneArchives(retention time.Duration) (int, error)
}

// CleanupAuditEventsTask trims the journal and, when an archive pruner is
// wired, the archived import payloads. Zero RetentionDays uses the default.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        TypeCleanupAuditEvents,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// retentionWindow resolves the task's retention against the configured default.
func retentionWindow(requested, configured int) (int, time.Duration) {
	days := requested
	if days <= 0 {
		days = configured
	}
	if days <= 0 {
		days = fallbackRetentionDays
	}
	return days, time.Duration(days) * 24 * time.Hour
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, archives ArchivePruner, defaultDays int, logger *zap.Logger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}
		days, window := retentionWindow(task.RetentionDays, defaultDays)

		events, err := cleaner.DeleteOldEvents(window)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		fields := []zap.Field{zap.Int("retention_days", days), zap.Int64("events_deleted", events)}
		if archives != nil {
			pruned, err := archives.PruneArchives(window)
			if err != nil {
				// Journal rows are gone already; a retry only revisits the archives.
				return fmt.Errorf("prune import archives: %w", err)
			}
			fields = append(fields, zap.Int("archives_pruned", pruned))
		}

		logger.Info("journal retention applied", fields...)
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, archives ArchivePruner, defaultDays int, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, archives, defaultDays, logger))
}
