package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/metadata"
)

// BookRefresher re-fetches catalogue metadata for library books.
type BookRefresher interface {
	RefreshBook(ctx context.Context, bookID string) (*metadata.RefreshResult, error)
	RefreshAll(ctx context.Context) (*metadata.BulkRefreshResult, error)
}

// RefreshBookTask refreshes a single book's descriptive metadata.
type RefreshBookTask struct {
	BookID string `json:"book_id"`
}

func (t RefreshBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        TypeRefreshBook,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func RefreshBookProcessor(refresher BookRefresher, logger *zap.Logger) backlite.QueueProcessor[RefreshBookTask] {
	return func(ctx context.Context, task RefreshBookTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		result, err := refresher.RefreshBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("refresh book %s: %w", task.BookID, err)
		}

		logger.Info("book refreshed",
			zap.String("book_id", task.BookID),
			zap.String("title", result.Book.Title),
			zap.Strings("fields", result.FieldsUpdated))
		return nil
	}
}

func NewRefreshBookQueue(refresher BookRefresher, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(RefreshBookProcessor(refresher, logger))
}
