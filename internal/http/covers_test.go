package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysh4me/bibliotheque-interactif/internal/database/memory"
	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

type fakeCoverCache struct {
	path string
	err  error
	urls []string
}

func (f *fakeCoverCache) GetCover(_ context.Context, _ string, coverURL string) (string, error) {
	f.urls = append(f.urls, coverURL)
	return f.path, f.err
}

func setupCoversRouter(t *testing.T, cache *fakeCoverCache) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := library.New(memory.NewRepository())
	_, err := store.Load()
	require.NoError(t, err)
	_, err = store.AddBook(entities.ColumnToRead, entities.Book{ID: "b1", Title: "Dune", Thumbnail: "https://covers.example/dune-small.jpg", Cover: "https://covers.example/dune.jpg"})
	require.NoError(t, err)
	_, err = store.AddBook(entities.ColumnToRead, entities.Book{ID: "b2", Title: "Sans image"})
	require.NoError(t, err)

	return NewRouter(RouterConfig{Library: store, CoverCache: cache})
}

func getCover(router *gin.Engine, id string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books/"+id+"/cover", nil))
	return w
}

func TestCoversController_GetCover(t *testing.T) {
	t.Run("serves the cached file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "b1.jpg")
		require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0o644))
		cache := &fakeCoverCache{path: path}

		w := getCover(setupCoversRouter(t, cache), "b1")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "jpeg bytes", w.Body.String())
		assert.Equal(t, []string{"https://covers.example/dune.jpg"}, cache.urls, "large cover preferred")
	})

	t.Run("redirects when the download fails", func(t *testing.T) {
		cache := &fakeCoverCache{err: errors.New("timeout")}

		w := getCover(setupCoversRouter(t, cache), "b1")

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "https://covers.example/dune.jpg", w.Header().Get("Location"))
	})

	t.Run("returns 404 for unknown books and books without cover", func(t *testing.T) {
		cache := &fakeCoverCache{}
		router := setupCoversRouter(t, cache)

		assert.Equal(t, http.StatusNotFound, getCover(router, "missing").Code)
		assert.Equal(t, http.StatusNotFound, getCover(router, "b2").Code)
		assert.Empty(t, cache.urls)
	})
}
