package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysh4me/bibliotheque-interactif/internal/database"
	"github.com/ysh4me/bibliotheque-interactif/internal/database/memory"
	"github.com/ysh4me/bibliotheque-interactif/internal/database/settings"
	"github.com/ysh4me/bibliotheque-interactif/internal/drag"
	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/exporters"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
	"github.com/ysh4me/bibliotheque-interactif/internal/metadata"
	"github.com/ysh4me/bibliotheque-interactif/internal/settingsstore"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fakeLookup struct {
	books map[string]entities.Book
	err   error
}

func (f *fakeLookup) Search(_ context.Context, query string, _ metadata.SearchOptions) ([]entities.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(query) < metadata.MinQueryLength {
		return nil, metadata.ErrQueryTooShort
	}
	results := []entities.Book{}
	for _, id := range []string{"vol-1", "vol-2"} {
		if book, ok := f.books[id]; ok {
			results = append(results, book)
		}
	}
	return results, nil
}

func (f *fakeLookup) FetchBookDetails(_ context.Context, id string) (*entities.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	book, ok := f.books[id]
	if !ok {
		return nil, library.ErrNotFound
	}
	return &book, nil
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
}

func (f *fakeQueue) Enqueue(_ context.Context, task backlite.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, task)
	return "task-1", nil
}

func (f *fakeQueue) Status(_ context.Context, id string) (backlite.TaskStatus, error) {
	if status, ok := f.statuses[id]; ok {
		return status, nil
	}
	return backlite.TaskStatusNotFound, nil
}

type fakeActivity struct {
	mu       sync.Mutex
	imports  int
	exports  []string
	settings []string
}

func (f *fakeActivity) LogImport(string, int, int, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports++
}

func (f *fakeActivity) LogExport(format string, _ int, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exports = append(f.exports, format)
}

func (f *fakeActivity) LogSettings(action, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = append(f.settings, action)
}

type testServer struct {
	router   *gin.Engine
	store    *library.Store
	repo     *memory.Repository
	settings *settingsstore.SettingsStore
	lookup   *fakeLookup
	queue    *fakeQueue
	activity *fakeActivity
	view     *drag.Recorder
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := memory.NewRepository()
	store := library.New(repo, library.WithClock(func() time.Time { return testNow }))
	_, err = store.Load()
	require.NoError(t, err)

	prefs := settingsstore.New(settings.NewRepository(db.DB), nil)
	view := &drag.Recorder{}
	srv := &testServer{
		store:    store,
		repo:     repo,
		settings: prefs,
		lookup: &fakeLookup{books: map[string]entities.Book{
			"vol-1": {ID: "vol-1", Title: "Dune", Authors: []string{"Frank Herbert"}, Source: entities.BookSourceGoogleBooks},
			"vol-2": {ID: "vol-2", Title: "Dune Messiah", Authors: []string{"Frank Herbert"}, Source: entities.BookSourceGoogleBooks},
		}},
		queue:    &fakeQueue{statuses: map[string]backlite.TaskStatus{"t-ok": backlite.TaskStatusSuccess}},
		activity: &fakeActivity{},
		view:     view,
	}

	srv.router = NewRouter(RouterConfig{
		Library:   store,
		Settings:  prefs,
		Database:  db,
		Lookup:    srv.lookup,
		Drag:      drag.NewCoordinator(store, drag.WithView(view)),
		DragView:  view,
		Data:      exporters.NewService(store, prefs, "test", exporters.WithClock(func() time.Time { return testNow })),
		Activity:  srv.activity,
		TaskQueue: srv.queue,
		Version:   "test",
	})
	return srv
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seed(t *testing.T, column entities.ColumnID, id, title string) {
	t.Helper()
	_, err := s.store.AddBook(column, entities.Book{ID: id, Title: title})
	require.NoError(t, err)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_OptionalRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := library.New(memory.NewRepository())
	_, err := store.Load()
	require.NoError(t, err)

	router := NewRouter(RouterConfig{Library: store})

	for _, path := range []string{"/api/lookup?q=dune", "/api/drag", "/api/settings", "/api/export", "/api/events", "/api/tasks/types"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/library", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Ping(t *testing.T) {
	srv := setupServer(t)

	w := srv.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}
