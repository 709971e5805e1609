package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// Backupper writes one backup of the library and returns its path.
type Backupper interface {
	RunNow(ctx context.Context) (string, error)
}

// BackupLibraryTask writes a backup outside the cron schedule.
type BackupLibraryTask struct{}

func (t BackupLibraryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        TypeBackupLibrary,
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func BackupLibraryProcessor(backupper Backupper, logger *zap.Logger) backlite.QueueProcessor[BackupLibraryTask] {
	return func(ctx context.Context, task BackupLibraryTask) error {
		if backupper == nil {
			return fmt.Errorf("backups not configured")
		}

		path, err := backupper.RunNow(ctx)
		if err != nil {
			return fmt.Errorf("backup library: %w", err)
		}

		logger.Info("library backed up", zap.String("path", path))
		return nil
	}
}

func NewBackupLibraryQueue(backupper Backupper, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(BackupLibraryProcessor(backupper, logger))
}
