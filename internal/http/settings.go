package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsController struct {
	store    SettingsStore
	activity ActivityLogger
	logger   *zap.Logger
}

func NewSettingsController(store SettingsStore, activity ActivityLogger, logger *zap.Logger) *SettingsController {
	if activity == nil {
		activity = nopActivity{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsController{store: store, activity: activity, logger: logger}
}

// GetSettings handles GET /api/settings
// Returns the resolved preferences and where each value came from.
func (sc *SettingsController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, sc.store.GetInfo())
}

// UpdateSettings handles PUT /api/settings
// Fields missing from the body keep their current value.
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	settings := sc.store.Get()
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondBadRequest(c, "invalid settings: "+err.Error())
		return
	}

	if err := sc.store.Save(settings); err != nil {
		respondError(c, sc.logger, err)
		return
	}
	sc.activity.LogSettings("settings_update", "Preferences saved")
	c.JSON(http.StatusOK, sc.store.GetInfo())
}

// ResetSettings handles POST /api/settings/reset
func (sc *SettingsController) ResetSettings(c *gin.Context) {
	if err := sc.store.Reset(); err != nil {
		respondError(c, sc.logger, err)
		return
	}
	sc.activity.LogSettings("settings_reset", "Preferences reset to defaults")
	c.JSON(http.StatusOK, sc.store.GetInfo())
}
