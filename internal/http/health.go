package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Books   int               `json:"books"`
	Checks  map[string]string `json:"checks"`
}

// BookCounter reports how many books the loaded library holds.
type BookCounter interface {
	TotalBooks() int
}

type HealthController struct {
	db      Pinger
	library BookCounter
	version string
}

func NewHealthController(db Pinger, library BookCounter, version string) *HealthController {
	return &HealthController{
		db:      db,
		library: library,
		version: version,
	}
}

// Status reports the database connection and the in-memory library.
// Only a failing database makes the service unhealthy.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	books := 0
	if h.library != nil {
		books = h.library.TotalBooks()
		checks["library"] = "loaded (" + strconv.Itoa(books) + " books)"
	} else {
		checks["library"] = "not loaded"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Books:   books,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}
