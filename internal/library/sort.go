package library

import (
	"sort"
	"strings"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

type SortField string

const (
	SortByDateAdded SortField = "dateAdded"
	SortByTitle     SortField = "title"
	SortByRating    SortField = "rating"
	SortByAuthor    SortField = "author"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (f SortField) Valid() bool {
	switch f {
	case SortByDateAdded, SortByTitle, SortByRating, SortByAuthor:
		return true
	}
	return false
}

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// SortBooks returns a sorted copy of books for display. The stored column
// order is never changed by sorting.
func SortBooks(books []entities.Book, field SortField, order SortOrder) []entities.Book {
	sorted := make([]entities.Book, len(books))
	copy(sorted, books)

	less := func(a, b entities.Book) bool {
		switch field {
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortByRating:
			return a.Rating < b.Rating
		case SortByAuthor:
			return strings.ToLower(firstAuthor(a)) < strings.ToLower(firstAuthor(b))
		default:
			return a.DateAdded.Before(b.DateAdded)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func firstAuthor(b entities.Book) string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}
