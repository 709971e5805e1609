package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func imageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake image data"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "covers")

	cache, err := NewCache(cacheDir, nil)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	if cache.CacheDir() != cacheDir {
		t.Errorf("expected cache dir %s, got %s", cacheDir, cache.CacheDir())
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("cache directory was not created")
	}
}

func TestGetCover_EmptyURL(t *testing.T) {
	cache, _ := NewCache(t.TempDir(), nil)

	path, err := cache.GetCover(context.Background(), "vol-1", "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path for empty URL, got %s", path)
	}
}

func TestGetCover_FetchAndCache(t *testing.T) {
	var hits atomic.Int32
	server := imageServer(t, &hits)
	cache, _ := NewCache(t.TempDir(), nil)

	path1, err := cache.GetCover(context.Background(), "vol/1", server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}
	if filepath.Dir(path1) != cache.CacheDir() {
		t.Errorf("ids with separators must stay inside the cache dir, got %s", path1)
	}

	data, err := os.ReadFile(path1)
	if err != nil || string(data) != "fake image data" {
		t.Errorf("unexpected cached content %q (%v)", data, err)
	}

	path2, err := cache.GetCover(context.Background(), "vol/1", server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover (cached) failed: %v", err)
	}
	if path1 != path2 {
		t.Error("expected same path for cached request")
	}
	if hits.Load() != 1 {
		t.Errorf("expected one download, got %d", hits.Load())
	}

	entries, _ := os.ReadDir(cache.CacheDir())
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "cover_tmp_") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestGetCover_ConcurrentRequests(t *testing.T) {
	server := imageServer(t, nil)
	cache, _ := NewCache(t.TempDir(), nil)

	var wg sync.WaitGroup
	paths := make([]string, 8)
	errs := make([]error, 8)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = cache.GetCover(context.Background(), "vol-1", server.URL+"/cover.jpg")
		}(i)
	}
	wg.Wait()

	for i := range paths {
		if errs[i] != nil {
			t.Fatalf("GetCover failed: %v", errs[i])
		}
		if paths[i] != paths[0] {
			t.Errorf("expected identical paths, got %s and %s", paths[i], paths[0])
		}
	}
}

func TestGetCover_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache, _ := NewCache(t.TempDir(), nil)

	_, err := cache.GetCover(context.Background(), "vol-1", server.URL+"/notfound.jpg")
	if err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestInvalidateCover(t *testing.T) {
	server := imageServer(t, nil)
	cache, _ := NewCache(t.TempDir(), nil)

	path, err := cache.GetCover(context.Background(), "vol-1", server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}
	other, err := cache.GetCover(context.Background(), "vol-2", server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("GetCover failed: %v", err)
	}

	if err := cache.InvalidateCover("vol-1"); err != nil {
		t.Fatalf("InvalidateCover failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cached file should be deleted after invalidation")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("other books' covers must survive invalidation")
	}
}

func TestCoverFilename(t *testing.T) {
	cache, _ := NewCache(t.TempDir(), nil)

	name1 := cache.coverFilename("vol-1", "https://example.com/cover.jpg")
	name2 := cache.coverFilename("vol-1", "https://example.com/cover.jpg")
	if name1 != name2 {
		t.Error("same inputs should produce same filename")
	}

	name3 := cache.coverFilename("vol-1", "https://example.com/other.jpg")
	if name1 == name3 {
		t.Error("different URLs should produce different filenames")
	}

	name4 := cache.coverFilename("vol-2", "https://example.com/cover.jpg")
	if name1 == name4 {
		t.Error("different book IDs should produce different filenames")
	}
}
