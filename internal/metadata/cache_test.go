package metadata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
)

type stubLookup struct {
	searches atomic.Int32
	details  atomic.Int32
	gate     chan struct{}
	honorCtx bool
	err      error
	books    map[string]entities.Book
}

func (s *stubLookup) Search(ctx context.Context, query string, _ SearchOptions) ([]entities.Book, error) {
	s.searches.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.honorCtx && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return []entities.Book{{ID: "vol-1", Title: query, Authors: []string{"A"}}}, nil
}

func (s *stubLookup) FetchBookDetails(_ context.Context, id string) (*entities.Book, error) {
	s.details.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.books[id]
	if !ok {
		return nil, library.ErrNotFound
	}
	return &b, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_SearchHitsWithinTTL(t *testing.T) {
	lookup := &stubLookup{}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewCache(lookup, 5*time.Minute, WithCacheClock(clock.Now))
	ctx := context.Background()

	first, err := cache.Search(ctx, "dune", SearchOptions{})
	require.NoError(t, err)
	second, err := cache.Search(ctx, " dune ", SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), lookup.searches.Load())
	assert.Equal(t, 1, cache.Len())

	// different options are a different entry
	_, err = cache.Search(ctx, "dune", SearchOptions{Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), lookup.searches.Load())

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Search(ctx, "dune", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), lookup.searches.Load())
}

func TestCache_ResultsAreCopies(t *testing.T) {
	cache := NewCache(&stubLookup{}, time.Minute)
	ctx := context.Background()

	first, err := cache.Search(ctx, "dune", SearchOptions{})
	require.NoError(t, err)
	first[0].Authors[0] = "changed"

	second, err := cache.Search(ctx, "dune", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, second[0].Authors)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	lookup := &stubLookup{err: errors.New("offline")}
	cache := NewCache(lookup, time.Minute)
	ctx := context.Background()

	_, err := cache.Search(ctx, "dune", SearchOptions{})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	lookup.err = nil
	books, err := cache.Search(ctx, "dune", SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, int32(2), lookup.searches.Load())
}

func TestCache_FetchBookDetails(t *testing.T) {
	lookup := &stubLookup{books: map[string]entities.Book{"vol-1": {ID: "vol-1", Title: "Dune"}}}
	cache := NewCache(lookup, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		book, err := cache.FetchBookDetails(ctx, "vol-1")
		require.NoError(t, err)
		assert.Equal(t, "Dune", book.Title)
	}
	assert.Equal(t, int32(1), lookup.details.Load())

	_, err := cache.FetchBookDetails(ctx, "vol-2")
	assert.ErrorIs(t, err, library.ErrNotFound)

	cache.Invalidate()
	assert.Equal(t, 0, cache.Len())
	_, err = cache.FetchBookDetails(ctx, "vol-1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), lookup.details.Load())
}

func TestCache_CoalescesConcurrentCalls(t *testing.T) {
	lookup := &stubLookup{gate: make(chan struct{})}
	cache := NewCache(lookup, time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]entities.Book, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cache.Search(context.Background(), "dune", SearchOptions{})
		}(i)
	}

	// let every caller reach the shared call before releasing it
	require.Eventually(t, func() bool { return lookup.searches.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(lookup.gate)
	wg.Wait()

	assert.Equal(t, int32(1), lookup.searches.Load())
	for _, books := range results {
		require.Len(t, books, 1)
		assert.Equal(t, "dune", books[0].Title)
	}
}

func TestCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	lookup := &stubLookup{gate: make(chan struct{}), honorCtx: true}
	cache := NewCache(lookup, time.Minute)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Search(firstCtx, "dune", SearchOptions{})
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return lookup.searches.Load() == 1 }, time.Second, time.Millisecond)

	var second []entities.Book
	var secondErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		second, secondErr = cache.Search(context.Background(), "dune", SearchOptions{})
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared call")
	}

	close(lookup.gate)
	<-done
	require.NoError(t, secondErr)
	require.Len(t, second, 1)
	assert.Equal(t, "dune", second[0].Title)
	assert.Equal(t, 1, cache.Len(), "the shared result is cached")
}
