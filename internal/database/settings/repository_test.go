package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Setting{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return repo, cleanup
}

func TestRepository_SetSetting_New(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetSetting("theme", "dark")
	require.NoError(t, err)

	setting, err := repo.GetSetting("theme")
	require.NoError(t, err)
	assert.Equal(t, "theme", setting.Key)
	assert.Equal(t, "dark", setting.Value)
}

func TestRepository_SetSetting_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	// Set initial value
	err := repo.SetSetting("theme", "light")
	require.NoError(t, err)

	// Update value
	err = repo.SetSetting("theme", "dark")
	require.NoError(t, err)

	setting, err := repo.GetSetting("theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", setting.Value)
}

func TestRepository_GetSetting_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetSetting("nonexistent")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_SetSettings(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting(entities.SettingKeyTheme, "light"))

	err := repo.SetSettings(map[string]string{
		entities.SettingKeyTheme:     "dark",
		entities.SettingKeySortOrder: "asc",
	})
	require.NoError(t, err)

	theme, err := repo.GetSetting(entities.SettingKeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme.Value)

	order, err := repo.GetSetting(entities.SettingKeySortOrder)
	require.NoError(t, err)
	assert.Equal(t, "asc", order.Value)
}

func TestRepository_GetSettings(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSettings(map[string]string{
		entities.SettingKeyTheme:  "dark",
		entities.SettingKeySortBy: "title",
	}))

	values, err := repo.GetSettings(entities.SettingKeyTheme, entities.SettingKeySortBy, entities.SettingKeyAutoSave)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		entities.SettingKeyTheme:  "dark",
		entities.SettingKeySortBy: "title",
	}, values)

	values, err = repo.GetSettings()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestRepository_SetSettings_KeepsOneRowPerKey(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting(entities.SettingKeyTheme, "light"))
	first, err := repo.GetSetting(entities.SettingKeyTheme)
	require.NoError(t, err)

	require.NoError(t, repo.SetSetting(entities.SettingKeyTheme, "dark"))
	require.NoError(t, repo.SetSettings(nil))

	var count int64
	require.NoError(t, repo.db.Model(&entities.Setting{}).Where("key = ?", entities.SettingKeyTheme).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	second, err := repo.GetSetting(entities.SettingKeyTheme)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "dark", second.Value)
}

func TestRepository_DeleteSettings(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("a", "1"))
	require.NoError(t, repo.SetSetting("b", "2"))
	require.NoError(t, repo.SetSetting("c", "3"))

	require.NoError(t, repo.DeleteSettings("a", "b"))
	require.NoError(t, repo.DeleteSettings())

	_, err := repo.GetSetting("a")
	assert.Error(t, err)
	_, err = repo.GetSetting("b")
	assert.Error(t, err)
	_, err = repo.GetSetting("c")
	assert.NoError(t, err)
}

func TestRepository_DeleteSettings_NonExistent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, repo.DeleteSettings("nonexistent"))
}
