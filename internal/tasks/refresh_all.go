package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// RefreshAllBooksTask refreshes every catalogue book, one after another.
type RefreshAllBooksTask struct{}

func (t RefreshAllBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        TypeRefreshAllBooks,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func RefreshAllBooksProcessor(refresher BookRefresher, logger *zap.Logger) backlite.QueueProcessor[RefreshAllBooksTask] {
	return func(ctx context.Context, task RefreshAllBooksTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		result, err := refresher.RefreshAll(ctx)
		if err != nil {
			return fmt.Errorf("refresh all books: %w", err)
		}

		logger.Info("library refresh complete",
			zap.Int("total", result.TotalBooks),
			zap.Int("refreshed", result.Refreshed),
			zap.Int("unchanged", result.Unchanged),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed))
		return nil
	}
}

func NewRefreshAllBooksQueue(refresher BookRefresher, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(RefreshAllBooksProcessor(refresher, logger))
}
