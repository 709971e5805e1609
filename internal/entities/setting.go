package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingKeyTheme          = "theme"
	SettingKeyBooksPerColumn = "books_per_column"
	SettingKeyAutoSave       = "auto_save"
	SettingKeyNotifications  = "notifications"
	SettingKeySortBy         = "sort_by"
	SettingKeySortOrder      = "sort_order"

	// Backup bookkeeping
	SettingKeyBackupLastAt      = "backup_last_at"
	SettingKeyBackupLastStatus  = "backup_last_status"
	SettingKeyBackupLastMessage = "backup_last_message"
)

// UserSettingKeys lists the keys that belong to the user preferences document.
var UserSettingKeys = []string{
	SettingKeyTheme,
	SettingKeyBooksPerColumn,
	SettingKeyAutoSave,
	SettingKeyNotifications,
	SettingKeySortBy,
	SettingKeySortOrder,
}
