package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/metadata"
)

// LookupController searches the external catalogue and promotes results
// into the library.
type LookupController struct {
	lookup Lookup
	store  LibraryStore
	logger *zap.Logger
}

func NewLookupController(lookup Lookup, store LibraryStore, logger *zap.Logger) *LookupController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupController{lookup: lookup, store: store, logger: logger}
}

// LookupResult is a catalogue match, flagged when the library already has it.
type LookupResult struct {
	entities.Book
	InLibrary bool `json:"inLibrary"`
}

// AddFromLookupRequest is the body of POST /api/lookup/:externalId/add.
type AddFromLookupRequest struct {
	Column entities.ColumnID `json:"column" binding:"required"`
}

// Search handles GET /api/lookup?q=&lang=&start=
func (lc *LookupController) Search(c *gin.Context) {
	start, ok := parseQueryInt(c, "start")
	if !ok {
		return
	}

	opts := metadata.SearchOptions{
		Language:   c.Query("lang"),
		StartIndex: start,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	books, err := lc.lookup.Search(ctx, c.Query("q"), opts)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}

	results := make([]LookupResult, len(books))
	for i, book := range books {
		_, err := lc.store.GetBook(book.ID)
		results[i] = LookupResult{Book: book, InLibrary: err == nil}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   c.Query("q"),
		"results": results,
		"count":   len(results),
	})
}

// Add handles POST /api/lookup/:externalId/add
func (lc *LookupController) Add(c *gin.Context) {
	var req AddFromLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "column is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := lc.store.AddFromLookup(ctx, lc.lookup, c.Param("externalId"), req.Column)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	respondCreated(c, book)
}
