package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/exporters"
)

// maxImportSize bounds an uploaded export document.
const maxImportSize = 10 << 20

// DataController downloads, uploads and wipes the whole library.
type DataController struct {
	data     DataService
	store    LibraryStore
	settings SettingsStore
	activity ActivityLogger
	logger   *zap.Logger
}

func NewDataController(data DataService, store LibraryStore, settings SettingsStore, activity ActivityLogger, logger *zap.Logger) *DataController {
	if activity == nil {
		activity = nopActivity{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataController{
		data:     data,
		store:    store,
		settings: settings,
		activity: activity,
		logger:   logger,
	}
}

// Export handles GET /api/export?format=json|markdown
func (dc *DataController) Export(c *gin.Context) {
	format := c.DefaultQuery("format", exporters.FormatJSON)

	var buf bytes.Buffer
	result, err := dc.data.Export(&buf, format)
	if err != nil {
		dc.activity.LogExport(format, 0, err)
		respondError(c, dc.logger, err)
		return
	}
	dc.activity.LogExport(format, result.BooksExported, nil)

	contentType, ext := "application/json", "json"
	if format == exporters.FormatMarkdown {
		contentType, ext = "text/markdown; charset=utf-8", "md"
	}
	filename := fmt.Sprintf("bibliotheque-%s.%s", result.ExportedAt.Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Import handles POST /api/import
// Accepts the document as the raw body or as a multipart "file" field.
func (dc *DataController) Import(c *gin.Context) {
	raw, err := readImportPayload(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := dc.data.Import(raw)
	if err != nil {
		dc.activity.LogImport("Import rejected", 0, 0, "", err)
		respondError(c, dc.logger, err)
		return
	}

	dc.activity.LogImport(
		fmt.Sprintf("Imported %d books", result.TotalBooks),
		result.TotalBooks, result.Report.EntriesDropped, result.ArchivePath, nil)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"total_books":      result.TotalBooks,
		"entries_dropped":  result.Report.EntriesDropped,
		"settings_applied": result.SettingsApplied,
		"imported_at":      time.Now().UTC().Format(time.RFC3339),
	})
}

// ResetLibrary handles POST /api/library/reset
// Empties every column; settings are kept.
func (dc *DataController) ResetLibrary(c *gin.Context) {
	if err := dc.store.ResetToDefault(); err != nil {
		respondError(c, dc.logger, err)
		return
	}
	respondSuccess(c, "library reset")
}

// ClearAll handles POST /api/library/clear
// Removes the persisted library and every stored setting.
func (dc *DataController) ClearAll(c *gin.Context) {
	if err := dc.store.ClearAll(); err != nil {
		respondError(c, dc.logger, err)
		return
	}
	if dc.settings != nil {
		if err := dc.settings.ClearAll(); err != nil {
			respondError(c, dc.logger, err)
			return
		}
	}
	respondSuccess(c, "all data cleared")
}

func readImportPayload(c *gin.Context) ([]byte, error) {
	if c.ContentType() == "multipart/form-data" {
		file, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("file is required")
		}
		if file.Size > maxImportSize {
			return nil, fmt.Errorf("file exceeds %d bytes", maxImportSize)
		}
		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(raw) > maxImportSize {
		return nil, fmt.Errorf("document exceeds %d bytes", maxImportSize)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return raw, nil
}
