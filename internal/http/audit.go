package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

type AuditController struct {
	journal EventJournal
	logger  *zap.Logger
}

func NewAuditController(journal EventJournal, logger *zap.Logger) *AuditController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditController{
		journal: journal,
		logger:  logger,
	}
}

// GetEvents returns paginated journal events as JSON
// GET /api/events?page=&limit=&type=&book_id=
func (ac *AuditController) GetEvents(c *gin.Context) {
	_, limit, offset := parsePagination(c, 25, 100)

	eventType := c.Query("type")
	bookID := c.Query("book_id")

	var events []entities.AuditEvent
	var total int64
	var err error

	switch {
	case bookID != "":
		events, total, err = ac.journal.GetEventsForBook(bookID, limit, offset)
	case eventType != "":
		events, total, err = ac.journal.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	default:
		events, total, err = ac.journal.GetEvents(limit, offset)
	}

	if err != nil {
		ac.logger.Error("failed to load journal events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to load events",
			Code:  string(library.KindPersistence),
		})
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}

// GetEventTypes lists the journal event types for filtering.
// GET /api/events/types
func (ac *AuditController) GetEventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"types": getEventTypes()})
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "Tous les événements"},
		{Value: string(entities.AuditEventBookAdded), Label: "Ajout"},
		{Value: string(entities.AuditEventBookMoved), Label: "Déplacement"},
		{Value: string(entities.AuditEventBookUpdated), Label: "Modification"},
		{Value: string(entities.AuditEventBookDeleted), Label: "Suppression"},
		{Value: string(entities.AuditEventLibraryReplaced), Label: "Bibliothèque remplacée"},
		{Value: string(entities.AuditEventImport), Label: "Import"},
		{Value: string(entities.AuditEventExport), Label: "Export"},
		{Value: string(entities.AuditEventSettings), Label: "Préférences"},
		{Value: string(entities.AuditEventBackup), Label: "Sauvegarde"},
	}
}

type EventTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
