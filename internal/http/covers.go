package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CoversController serves locally cached book covers.
type CoversController struct {
	cache  CoverGetter
	store  LibraryStore
	logger *zap.Logger
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache CoverGetter, store LibraryStore, logger *zap.Logger) *CoversController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoversController{
		cache:  cache,
		store:  store,
		logger: logger,
	}
}

// GetCover serves a cached book cover image.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id := c.Param("id")
	book, err := cc.store.GetBook(id)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	coverURL := book.CoverURL()
	if coverURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	// Get cached cover (will fetch if not cached)
	cachePath, err := cc.cache.GetCover(c.Request.Context(), id, coverURL)
	if err != nil || cachePath == "" {
		cc.logger.Debug("cover not cached, redirecting", zap.String("book_id", id), zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, coverURL)
		return
	}

	c.File(cachePath)
}
