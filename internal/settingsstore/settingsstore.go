package settingsstore

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ysh4me/bibliotheque-interactif/internal/database/settings"
	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	MinBooksPerColumn = 1
	MaxBooksPerColumn = 200
)

const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// Environment variables consulted when a preference is not stored.
const (
	EnvTheme          = "SETTINGS_THEME"
	EnvBooksPerColumn = "SETTINGS_BOOKS_PER_COLUMN"
	EnvAutoSave       = "SETTINGS_AUTO_SAVE"
	EnvNotifications  = "SETTINGS_NOTIFICATIONS"
	EnvSortBy         = "SETTINGS_SORT_BY"
	EnvSortOrder      = "SETTINGS_SORT_ORDER"
)

var ErrInvalidSettings = fmt.Errorf("%w: invalid settings", library.ErrValidation)

// Settings are the user's display preferences.
type Settings struct {
	Theme          string            `json:"theme"`
	BooksPerColumn int               `json:"booksPerColumn"`
	AutoSave       bool              `json:"autoSave"`
	Notifications  bool              `json:"notifications"`
	SortBy         library.SortField `json:"sortBy"`
	SortOrder      library.SortOrder `json:"sortOrder"`
}

func Defaults() Settings {
	return Settings{
		Theme:          ThemeLight,
		BooksPerColumn: 20,
		AutoSave:       true,
		Notifications:  true,
		SortBy:         library.SortByDateAdded,
		SortOrder:      library.SortDesc,
	}
}

func (s Settings) Validate() error {
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		return fmt.Errorf("%w: theme must be %q or %q", ErrInvalidSettings, ThemeLight, ThemeDark)
	}
	if s.BooksPerColumn < MinBooksPerColumn || s.BooksPerColumn > MaxBooksPerColumn {
		return fmt.Errorf("%w: booksPerColumn must be between %d and %d", ErrInvalidSettings, MinBooksPerColumn, MaxBooksPerColumn)
	}
	if !s.SortBy.Valid() {
		return fmt.Errorf("%w: unknown sortBy %q", ErrInvalidSettings, s.SortBy)
	}
	if !s.SortOrder.Valid() {
		return fmt.Errorf("%w: unknown sortOrder %q", ErrInvalidSettings, s.SortOrder)
	}
	return nil
}

// FieldInfo tells where a preference value came from.
type FieldInfo struct {
	Value  any    `json:"value"`
	Source string `json:"source"` // "database", "environment", or "default"
}

// SettingsInfo is Settings plus the source of every field.
type SettingsInfo struct {
	Settings Settings             `json:"settings"`
	Sources  map[string]FieldInfo `json:"sources"`
}

// BackupStatus is the bookkeeping the backup scheduler leaves behind.
type BackupStatus struct {
	LastAt  *time.Time `json:"last_at,omitempty"`
	Status  string     `json:"status,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Priority: database > environment > default
type SettingsStore struct {
	repo   *settings.Repository
	getenv func(string) string
	logger *zap.Logger
}

func New(repo *settings.Repository, logger *zap.Logger) *SettingsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsStore{repo: repo, getenv: os.Getenv, logger: logger}
}

type field struct {
	key    string
	env    string
	parse  func(raw string, s *Settings) bool
	format func(s Settings) string
	value  func(s Settings) any
}

// fields lists every preference. parse reports false for values that do
// not pass validation, so a bad stored value falls through to the next source.
var fields = []field{
	{
		key: entities.SettingKeyTheme, env: EnvTheme,
		parse: func(raw string, s *Settings) bool {
			if raw != ThemeLight && raw != ThemeDark {
				return false
			}
			s.Theme = raw
			return true
		},
		format: func(s Settings) string { return s.Theme },
		value:  func(s Settings) any { return s.Theme },
	},
	{
		key: entities.SettingKeyBooksPerColumn, env: EnvBooksPerColumn,
		parse: func(raw string, s *Settings) bool {
			n, err := strconv.Atoi(raw)
			if err != nil || n < MinBooksPerColumn || n > MaxBooksPerColumn {
				return false
			}
			s.BooksPerColumn = n
			return true
		},
		format: func(s Settings) string { return strconv.Itoa(s.BooksPerColumn) },
		value:  func(s Settings) any { return s.BooksPerColumn },
	},
	{
		key: entities.SettingKeyAutoSave, env: EnvAutoSave,
		parse: func(raw string, s *Settings) bool {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return false
			}
			s.AutoSave = b
			return true
		},
		format: func(s Settings) string { return strconv.FormatBool(s.AutoSave) },
		value:  func(s Settings) any { return s.AutoSave },
	},
	{
		key: entities.SettingKeyNotifications, env: EnvNotifications,
		parse: func(raw string, s *Settings) bool {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return false
			}
			s.Notifications = b
			return true
		},
		format: func(s Settings) string { return strconv.FormatBool(s.Notifications) },
		value:  func(s Settings) any { return s.Notifications },
	},
	{
		key: entities.SettingKeySortBy, env: EnvSortBy,
		parse: func(raw string, s *Settings) bool {
			if !library.SortField(raw).Valid() {
				return false
			}
			s.SortBy = library.SortField(raw)
			return true
		},
		format: func(s Settings) string { return string(s.SortBy) },
		value:  func(s Settings) any { return s.SortBy },
	},
	{
		key: entities.SettingKeySortOrder, env: EnvSortOrder,
		parse: func(raw string, s *Settings) bool {
			if !library.SortOrder(raw).Valid() {
				return false
			}
			s.SortOrder = library.SortOrder(raw)
			return true
		},
		format: func(s Settings) string { return string(s.SortOrder) },
		value:  func(s Settings) any { return s.SortOrder },
	},
}

// Get resolves every preference.
func (s *SettingsStore) Get() Settings {
	return s.GetInfo().Settings
}

// GetInfo resolves every preference and records which source won.
func (s *SettingsStore) GetInfo() SettingsInfo {
	resolved := Defaults()
	sources := make(map[string]FieldInfo, len(fields))

	stored, err := s.repo.GetSettings(entities.UserSettingKeys...)
	if err != nil {
		s.logger.Warn("failed to read stored settings", zap.Error(err))
	}

	for _, f := range fields {
		source := SourceDefault
		if raw := stored[f.key]; raw != "" {
			if f.parse(raw, &resolved) {
				source = SourceDatabase
			} else {
				s.logger.Warn("ignoring invalid stored setting",
					zap.String("key", f.key),
					zap.String("value", raw))
			}
		}
		if source == SourceDefault {
			if raw := s.getenv(f.env); raw != "" && f.parse(raw, &resolved) {
				source = SourceEnvironment
			}
		}
		sources[f.key] = FieldInfo{Value: f.value(resolved), Source: source}
	}

	return SettingsInfo{Settings: resolved, Sources: sources}
}

// Save validates and stores every preference in one transaction.
func (s *SettingsStore) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.key] = f.format(settings)
	}
	if err := s.repo.SetSettings(values); err != nil {
		return fmt.Errorf("%w: save settings: %w", library.ErrPersistence, err)
	}
	s.logger.Info("settings saved", zap.String("theme", settings.Theme), zap.String("sort_by", string(settings.SortBy)))
	return nil
}

// Reset removes the stored preferences so environment and defaults apply again.
func (s *SettingsStore) Reset() error {
	err := s.repo.DeleteSettings(entities.UserSettingKeys...)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: reset settings: %w", library.ErrPersistence, err)
	}
	return nil
}

// ClearAll removes every stored setting, including backup bookkeeping.
func (s *SettingsStore) ClearAll() error {
	keys := append([]string{}, entities.UserSettingKeys...)
	keys = append(keys,
		entities.SettingKeyBackupLastAt,
		entities.SettingKeyBackupLastStatus,
		entities.SettingKeyBackupLastMessage)
	if err := s.repo.DeleteSettings(keys...); err != nil {
		return fmt.Errorf("%w: clear settings: %w", library.ErrPersistence, err)
	}
	return nil
}

func (s *SettingsStore) GetBackupStatus() BackupStatus {
	stored, err := s.repo.GetSettings(
		entities.SettingKeyBackupLastAt,
		entities.SettingKeyBackupLastStatus,
		entities.SettingKeyBackupLastMessage)
	if err != nil {
		s.logger.Warn("failed to read backup status", zap.Error(err))
		return BackupStatus{}
	}

	status := BackupStatus{
		Status:  stored[entities.SettingKeyBackupLastStatus],
		Message: stored[entities.SettingKeyBackupLastMessage],
	}
	if t, err := time.Parse(time.RFC3339, stored[entities.SettingKeyBackupLastAt]); err == nil {
		status.LastAt = &t
	}
	return status
}

func (s *SettingsStore) SetBackupStatus(at time.Time, status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyBackupLastAt:      at.UTC().Format(time.RFC3339),
		entities.SettingKeyBackupLastStatus:  status,
		entities.SettingKeyBackupLastMessage: message,
	})
}
