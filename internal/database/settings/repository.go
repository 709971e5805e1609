// Package settings stores preferences and backup bookkeeping as key/value
// rows in the settings table.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	values, err := repo.GetSettings(entities.UserSettingKeys...)
package settings

import (
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting by key. A missing key returns gorm.ErrRecordNotFound.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetSettings returns the stored values of the listed keys. Missing keys are
// absent from the map.
func (r *Repository) GetSettings(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	var rows []entities.Setting
	if err := r.db.Where("key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// SetSetting creates or updates a single setting.
func (r *Repository) SetSetting(key, value string) error {
	return r.SetSettings(map[string]string{key: value})
}

// SetSettings upserts every pair in one statement.
func (r *Repository) SetSettings(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	rows := make([]entities.Setting, 0, len(values))
	for key, value := range values {
		rows = append(rows, entities.Setting{Key: key, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}

// DeleteSettings removes every listed key. Unknown keys are ignored.
func (r *Repository) DeleteSettings(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.Where("key IN ?", keys).Delete(&entities.Setting{}).Error
}
