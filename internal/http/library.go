package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

type LibraryController struct {
	store    LibraryStore
	settings SettingsStore
	logger   *zap.Logger
}

func NewLibraryController(store LibraryStore, settings SettingsStore, logger *zap.Logger) *LibraryController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibraryController{
		store:    store,
		settings: settings,
		logger:   logger,
	}
}

// ColumnResponse is one column of the board.
type ColumnResponse struct {
	Column entities.ColumnID `json:"column"`
	Title  string            `json:"title"`
	Books  []entities.Book   `json:"books"`
	Count  int               `json:"count"`
	Sorted bool              `json:"sorted"`
}

// MoveRequest is the body of POST /api/books/:id/move. From defaults to the
// column currently holding the book.
type MoveRequest struct {
	From entities.ColumnID `json:"from"`
	To   entities.ColumnID `json:"to" binding:"required"`
}

// GetLibrary handles GET /api/library
func (lc *LibraryController) GetLibrary(c *gin.Context) {
	c.JSON(http.StatusOK, lc.store.Snapshot())
}

// GetColumn handles GET /api/library/columns/:column
// With ?sorted=true the books are ordered by the saved sort preference; the
// stored column order is not changed.
func (lc *LibraryController) GetColumn(c *gin.Context) {
	column, ok := parseColumnParam(c, "column")
	if !ok {
		return
	}

	books, err := lc.store.Column(column)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}

	sorted := c.Query("sorted") == "true"
	if sorted && lc.settings != nil {
		prefs := lc.settings.Get()
		books = library.SortBooks(books, prefs.SortBy, prefs.SortOrder)
	}

	c.JSON(http.StatusOK, ColumnResponse{
		Column: column,
		Title:  column.Title(),
		Books:  books,
		Count:  len(books),
		Sorted: sorted,
	})
}

// AddBook handles POST /api/library/columns/:column/books
// Manual entries without an id get a generated one.
func (lc *LibraryController) AddBook(c *gin.Context) {
	column, ok := parseColumnParam(c, "column")
	if !ok {
		return
	}

	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book: "+err.Error())
		return
	}
	if strings.TrimSpace(book.ID) == "" {
		book.ID = library.NewBookID()
		book.Source = entities.BookSourceManual
	}

	added, err := lc.store.AddBook(column, book)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	respondCreated(c, added)
}

// GetBook handles GET /api/books/:id
func (lc *LibraryController) GetBook(c *gin.Context) {
	book, err := lc.store.GetBook(c.Param("id"))
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook handles PATCH /api/books/:id
func (lc *LibraryController) UpdateBook(c *gin.Context) {
	var patch library.BookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid patch: "+err.Error())
		return
	}

	book, err := lc.store.UpdateBook(c.Param("id"), patch)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// MoveBook handles POST /api/books/:id/move
func (lc *LibraryController) MoveBook(c *gin.Context) {
	id := c.Param("id")

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "to is required")
		return
	}
	if req.From == "" {
		current, err := lc.store.GetBook(id)
		if err != nil {
			respondError(c, lc.logger, err)
			return
		}
		req.From = current.Status
	}

	book, err := lc.store.MoveBook(id, req.From, req.To)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/:id?column=
// Without a column every column is searched.
func (lc *LibraryController) DeleteBook(c *gin.Context) {
	book, err := lc.store.DeleteBook(c.Param("id"), entities.ColumnID(c.Query("column")))
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "book deleted", Data: book})
}

// SearchBooks handles GET /api/books/search?q=
func (lc *LibraryController) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	hits := lc.store.SearchBooks(query)
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": hits,
		"count":   len(hits),
	})
}

// GetStats handles GET /api/stats
func (lc *LibraryController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, lc.store.GetStats())
}
