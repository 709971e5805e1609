package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies that are nil leave their routes unregistered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	health := NewHealthController(cfg.Database, cfg.Library, cfg.Version)
	libraryController := NewLibraryController(cfg.Library, cfg.Settings, logger)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	// Library endpoints
	api.GET("/library", libraryController.GetLibrary)
	api.GET("/library/columns/:column", libraryController.GetColumn)
	api.POST("/library/columns/:column/books", libraryController.AddBook)
	api.GET("/books/search", libraryController.SearchBooks)
	api.GET("/books/:id", libraryController.GetBook)
	api.PATCH("/books/:id", libraryController.UpdateBook)
	api.POST("/books/:id/move", libraryController.MoveBook)
	api.DELETE("/books/:id", libraryController.DeleteBook)
	api.GET("/stats", libraryController.GetStats)

	// External catalogue
	if cfg.Lookup != nil {
		lookupController := NewLookupController(cfg.Lookup, cfg.Library, logger)
		api.GET("/lookup", lookupController.Search)
		api.POST("/lookup/:externalId/add", lookupController.Add)
	}

	// Drag session
	if cfg.Drag != nil {
		dragController := NewDragController(cfg.Drag, cfg.DragView, logger)
		api.GET("/drag", dragController.State)
		api.POST("/drag/start", dragController.Start)
		api.POST("/drag/over", dragController.Over)
		api.POST("/drag/drop", dragController.Drop)
		api.POST("/drag/cancel", dragController.Cancel)
	}

	// Settings
	if cfg.Settings != nil {
		settingsController := NewSettingsController(cfg.Settings, cfg.Activity, logger)
		api.GET("/settings", settingsController.GetSettings)
		api.PUT("/settings", settingsController.UpdateSettings)
		api.POST("/settings/reset", settingsController.ResetSettings)
	}

	// Export, import and wipe
	if cfg.Data != nil {
		dataController := NewDataController(cfg.Data, cfg.Library, cfg.Settings, cfg.Activity, logger)
		api.GET("/export", dataController.Export)
		api.POST("/import", dataController.Import)
		api.POST("/library/reset", dataController.ResetLibrary)
		api.POST("/library/clear", dataController.ClearAll)
	}

	// Event journal
	if cfg.Journal != nil {
		auditController := NewAuditController(cfg.Journal, logger)
		api.GET("/events", auditController.GetEvents)
		api.GET("/events/types", auditController.GetEventTypes)
	}

	// Book cover endpoint
	if cfg.CoverCache != nil {
		coversController := NewCoversController(cfg.CoverCache, cfg.Library, logger)
		api.GET("/books/:id/cover", coversController.GetCover)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, logger)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
