package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

// SnapshotRepository persists the serialized library as a single row.
// A positive quota caps the payload size in bytes.
type SnapshotRepository struct {
	db     *gorm.DB
	key    string
	quota  int
	logger *zap.Logger
}

func NewSnapshotRepository(db *gorm.DB, quota int, log *zap.Logger) *SnapshotRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &SnapshotRepository{
		db:     db,
		key:    entities.LibrarySnapshotKey,
		quota:  quota,
		logger: log,
	}
}

// Load returns the stored payload, or nil when nothing has been saved yet.
func (r *SnapshotRepository) Load() ([]byte, error) {
	var row entities.LibrarySnapshot
	err := r.db.Where("key = ?", r.key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load library snapshot: %w", err)
	}
	return []byte(row.Payload), nil
}

func (r *SnapshotRepository) Save(data []byte) error {
	if r.quota > 0 && len(data) > r.quota {
		r.logger.Warn("library snapshot over quota",
			zap.Int("size_bytes", len(data)),
			zap.Int("quota_bytes", r.quota))
		return fmt.Errorf("%w: snapshot of %d bytes exceeds %d", library.ErrQuotaExceeded, len(data), r.quota)
	}

	var row entities.LibrarySnapshot
	result := r.db.Where("key = ?", r.key).First(&row)

	var err error
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		row = entities.LibrarySnapshot{
			Key:       r.key,
			Payload:   string(data),
			SizeBytes: len(data),
		}
		err = r.db.Create(&row).Error
	case result.Error != nil:
		err = result.Error
	default:
		row.Payload = string(data)
		row.SizeBytes = len(data)
		err = r.db.Save(&row).Error
	}
	if err != nil {
		return classify("save", err)
	}
	return nil
}

// Clear deletes the stored payload.
func (r *SnapshotRepository) Clear() error {
	if err := r.db.Where("key = ?", r.key).Delete(&entities.LibrarySnapshot{}).Error; err != nil {
		return classify("clear", err)
	}
	return nil
}

// Usage reports the stored payload size against the quota.
func (r *SnapshotRepository) Usage() (used int, quota int, err error) {
	var row entities.LibrarySnapshot
	err = r.db.Where("key = ?", r.key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, r.quota, nil
	}
	if err != nil {
		return 0, r.quota, err
	}
	return row.SizeBytes, r.quota, nil
}

// classify maps a disk-full sqlite error onto the quota failure.
func classify(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull {
		return fmt.Errorf("%w: %s library snapshot: %w", library.ErrQuotaExceeded, op, err)
	}
	return fmt.Errorf("failed to %s library snapshot: %w", op, err)
}
