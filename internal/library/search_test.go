package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

func hitIDs(hits []SearchHit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.Book.ID
	}
	return ids
}

func seedSearchLibrary(t *testing.T) *Store {
	t.Helper()
	store, _ := setupTestStore(t)

	dune := book("b1", "Dune", "Frank Herbert")
	dune.Categories = []string{"Science-fiction"}
	mustAdd(t, store, entities.ColumnToRead, dune)

	foundation := book("b2", "Foundation", "Isaac Asimov")
	foundation.Description = "A galactic empire falls; a bar of psychohistory remains."
	mustAdd(t, store, entities.ColumnRead, foundation)

	bar := book("b3", "Foo Bar Baz", "Anon")
	mustAdd(t, store, entities.ColumnReading, bar)

	foo := book("b4", "Foo Fighters", "Dave")
	mustAdd(t, store, entities.ColumnFavorites, foo)
	return store
}

func TestSearchConjunction(t *testing.T) {
	store := seedSearchLibrary(t)

	assert.Equal(t, []string{"b3"}, hitIDs(store.SearchBooks("foo bar")))
	assert.Equal(t, []string{"b3"}, hitIDs(store.SearchBooks("BAR foo")))
	assert.Equal(t, []string{"b3", "b4"}, hitIDs(store.SearchBooks("foo")))
	assert.Equal(t, []string{"b2", "b3"}, hitIDs(store.SearchBooks("bar")))
}

func TestSearchFields(t *testing.T) {
	store := seedSearchLibrary(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"herbert", []string{"b1"}},
		{"science", []string{"b1"}},
		{"psychohistory", []string{"b2"}},
		{"asimov galactic", []string{"b2"}},
		{"dune asimov", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, hitIDs(store.SearchBooks(tt.query)))
		})
	}
}

func TestSearchShortQueryReturnsEverything(t *testing.T) {
	store := seedSearchLibrary(t)

	for _, query := range []string{"", " ", "f", " é "} {
		hits := store.SearchBooks(query)
		assert.Len(t, hits, 4, "query %q", query)
	}
}

func TestSearchHitCarriesColumn(t *testing.T) {
	store := seedSearchLibrary(t)

	hits := store.SearchBooks("foundation")
	require.Len(t, hits, 1)
	assert.Equal(t, entities.ColumnRead, hits[0].Column)
}

func TestSearchEmptyLibrary(t *testing.T) {
	store, _ := setupTestStore(t)
	hits := store.SearchBooks("dune")
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestGetStats(t *testing.T) {
	store, _ := setupTestStore(t)

	first := book("b1", "Dune", "Frank Herbert")
	first.Rating = 5
	first.Categories = []string{"Fiction"}
	first.DateAdded = testNow.Add(-72 * time.Hour)
	mustAdd(t, store, entities.ColumnRead, first)

	second := book("b2", "Dune Messiah", "Frank Herbert")
	second.Rating = 3
	second.Categories = []string{"Fiction", "Classics"}
	mustAdd(t, store, entities.ColumnRead, second)

	mustAdd(t, store, entities.ColumnToRead, book("b3", "Hyperion", "Dan Simmons"))

	stats := store.GetStats()
	assert.Equal(t, 3, stats.TotalBooks)
	assert.Equal(t, ColumnStats{Count: 2, Title: "Lu"}, stats.Columns[entities.ColumnRead])
	assert.Equal(t, ColumnStats{Count: 1, Title: "À lire"}, stats.Columns[entities.ColumnToRead])
	assert.Equal(t, ColumnStats{Count: 0, Title: "Favoris"}, stats.Columns[entities.ColumnFavorites])

	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 1}, stats.Ratings)
	assert.Equal(t, map[string]int{"Fiction": 2, "Classics": 1}, stats.Categories)
	assert.Equal(t, map[string]int{"Frank Herbert": 2, "Dan Simmons": 1}, stats.Authors)

	require.NotNil(t, stats.Dates.OldestBook)
	require.NotNil(t, stats.Dates.NewestBook)
	assert.Equal(t, testNow.Add(-72*time.Hour), *stats.Dates.OldestBook)
	assert.Equal(t, testNow, *stats.Dates.NewestBook)
}

func TestGetStatsEmpty(t *testing.T) {
	store, _ := setupTestStore(t)
	stats := store.GetStats()

	assert.Equal(t, 0, stats.TotalBooks)
	assert.Len(t, stats.Columns, 4)
	assert.Nil(t, stats.Dates.OldestBook)
	assert.Nil(t, stats.Dates.NewestBook)
}

func TestSortBooks(t *testing.T) {
	a := entities.Book{ID: "a", Title: "b-title", Authors: []string{"Zola"}, Rating: 3, DateAdded: testNow}
	b := entities.Book{ID: "b", Title: "A-title", Authors: []string{"asimov"}, Rating: 5, DateAdded: testNow.Add(time.Hour)}
	c := entities.Book{ID: "c", Title: "c-title", Authors: []string{"Herbert"}, Rating: 3, DateAdded: testNow.Add(-time.Hour)}
	books := []entities.Book{a, b, c}

	ids := func(books []entities.Book) []string {
		out := make([]string, len(books))
		for i, b := range books {
			out[i] = b.ID
		}
		return out
	}

	assert.Equal(t, []string{"b", "a", "c"}, ids(SortBooks(books, SortByDateAdded, SortDesc)))
	assert.Equal(t, []string{"c", "a", "b"}, ids(SortBooks(books, SortByDateAdded, SortAsc)))
	assert.Equal(t, []string{"b", "a", "c"}, ids(SortBooks(books, SortByTitle, SortAsc)))
	assert.Equal(t, []string{"a", "c", "b"}, ids(SortBooks(books, SortByRating, SortAsc)))
	assert.Equal(t, []string{"b", "a", "c"}, ids(SortBooks(books, SortByRating, SortDesc)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(SortBooks(books, SortByAuthor, SortAsc)))

	// input order is untouched
	assert.Equal(t, []string{"a", "b", "c"}, ids(books))

	assert.True(t, SortByAuthor.Valid())
	assert.False(t, SortField("pages").Valid())
	assert.False(t, SortOrder("up").Valid())
}
