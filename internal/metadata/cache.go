package metadata

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

const (
	DefaultCacheTTL = 5 * time.Minute

	// sharedFetchTimeout bounds an upstream call that outlives the caller who started it.
	sharedFetchTimeout = 30 * time.Second
)

// Cache memoizes a Lookup for a fixed TTL and collapses concurrent identical
// requests into one upstream call. Failures are never cached.
type Cache struct {
	lookup Lookup
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

type CacheOption func(*Cache)

func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCache(lookup Lookup, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		lookup:  lookup,
		ttl:     ttl,
		now:     time.Now,
		logger:  zap.NewNop(),
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Search(ctx context.Context, query string, opts SearchOptions) ([]entities.Book, error) {
	key := "search_" + strings.TrimSpace(query) + "_" + opts.key()
	value, err := c.load(ctx, key, func(fetchCtx context.Context) (any, error) {
		return c.lookup.Search(fetchCtx, query, opts)
	})
	if err != nil {
		return nil, err
	}
	return cloneBooks(value.([]entities.Book)), nil
}

func (c *Cache) FetchBookDetails(ctx context.Context, externalID string) (*entities.Book, error) {
	value, err := c.load(ctx, "details_"+externalID, func(fetchCtx context.Context) (any, error) {
		return c.lookup.FetchBookDetails(fetchCtx, externalID)
	})
	if err != nil {
		return nil, err
	}
	cached, _ := value.(*entities.Book)
	if cached == nil {
		return nil, nil
	}
	book := cached.Clone()
	return &book, nil
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of live entries, sweeping expired ones first.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	return len(c.entries)
}

// load serves key from the cache or runs fetch once for every concurrent
// caller. fetch gets a context detached from the first caller's cancellation,
// so one caller giving up does not fail the others; each caller still returns
// as soon as its own ctx is done.
func (c *Cache) load(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if value, ok := c.get(key); ok {
		c.logger.Debug("lookup cache hit", zap.String("key", key))
		return value, nil
	}

	result := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		value, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.set(key, value)
		return value, nil
	})

	select {
	case res := <-result:
		if res.Shared {
			c.logger.Debug("lookup coalesced", zap.String("key", key))
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

func (c *Cache) sweepLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func cloneBooks(books []entities.Book) []entities.Book {
	out := make([]entities.Book, len(books))
	for i, b := range books {
		out[i] = b.Clone()
	}
	return out
}
