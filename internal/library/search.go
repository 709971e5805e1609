package library

import (
	"strings"
	"unicode/utf8"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// MinQueryLength is the shortest query that filters; shorter queries list
// the whole library.
const MinQueryLength = 2

// SearchHit is a matching book tagged with the column that holds it.
type SearchHit struct {
	Book   entities.Book     `json:"book"`
	Column entities.ColumnID `json:"column"`
}

// SearchBooks returns every book whose title, authors, description and
// categories contain all whitespace-separated tokens of query, compared
// case-insensitively as substrings. Results follow column then position order.
func (s *Store) SearchBooks(query string) []SearchHit {
	query = strings.TrimSpace(query)
	var tokens []string
	if utf8.RuneCountInString(query) >= MinQueryLength {
		tokens = strings.Fields(strings.ToLower(query))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := []SearchHit{}
	for _, column := range entities.Columns {
		for _, book := range s.snapshot.Columns[column] {
			if matchesAll(searchableText(book), tokens) {
				hits = append(hits, SearchHit{Book: book.Clone(), Column: column})
			}
		}
	}
	return hits
}

func searchableText(b entities.Book) string {
	parts := make([]string, 0, 2+len(b.Authors)+len(b.Categories))
	parts = append(parts, b.Title)
	parts = append(parts, b.Authors...)
	parts = append(parts, b.Description)
	parts = append(parts, b.Categories...)
	return strings.ToLower(strings.Join(parts, " "))
}

func matchesAll(text string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(text, token) {
			return false
		}
	}
	return true
}
