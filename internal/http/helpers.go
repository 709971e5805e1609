package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/drag"
	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

// StatusInsufficientStorage is returned when the library no longer fits its quota.
const StatusInsufficientStorage = http.StatusInsufficientStorage

const codeInvalidTransition = "invalid_transition"

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // failure kind
	Details any    `json:"details,omitempty"` // additional context
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: string(library.KindValidation)})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: string(library.KindNotFound)})
}

// respondError translates a failure into its status code. Persistence
// failures are logged and their cause is not exposed to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if errors.Is(err, drag.ErrInvalidTransition) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: codeInvalidTransition})
		return
	}

	kind := library.Kind(err)
	status := statusForKind(kind)
	response := ErrorResponse{Error: err.Error(), Code: string(kind)}

	switch kind {
	case library.KindPersistence:
		logger.Error("persistence failure", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error = "the library could not be saved"
	case library.KindQuotaExceeded:
		logger.Warn("storage quota exceeded", zap.String("path", c.FullPath()))
		response.Error = "storage quota exceeded"
		response.Details = gin.H{"hint": "export the library and remove books to free space"}
	case library.KindUnavailable:
		logger.Warn("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, response)
}

func statusForKind(kind library.FailureKind) int {
	switch kind {
	case library.KindValidation:
		return http.StatusBadRequest
	case library.KindNotFound:
		return http.StatusNotFound
	case library.KindQuotaExceeded:
		return StatusInsufficientStorage
	case library.KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseColumnParam extracts a column id from URL parameters.
// Responds with a 400 error and returns "", false when it is not a known column.
func parseColumnParam(c *gin.Context, paramName string) (entities.ColumnID, bool) {
	column := entities.ColumnID(c.Param(paramName))
	if !column.Valid() {
		respondBadRequest(c, "unknown column "+strconv.Quote(string(column)))
		return "", false
	}
	return column, true
}

// parsePagination reads page and limit query parameters.
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

// parseQueryInt reads an optional non-negative integer query parameter.
func parseQueryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return value, true
}
