package library

import (
	"time"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

type ColumnStats struct {
	Count int    `json:"count"`
	Title string `json:"title"`
}

type DateRange struct {
	OldestBook *time.Time `json:"oldestBook"`
	NewestBook *time.Time `json:"newestBook"`
}

type Stats struct {
	Columns    map[entities.ColumnID]ColumnStats `json:"columns"`
	TotalBooks int                               `json:"totalBooks"`
	Ratings    map[int]int                       `json:"ratings"`
	Categories map[string]int                    `json:"categories"`
	Authors    map[string]int                    `json:"authors"`
	Dates      DateRange                         `json:"dates"`
}

// GetStats aggregates counts, the 1..5 rating histogram, category and author
// frequencies and the dateAdded range over the whole library. Unrated books
// (rating 0) are not counted in the histogram.
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return computeStats(s.snapshot)
}

func computeStats(snapshot entities.Snapshot) Stats {
	stats := Stats{
		Columns:    make(map[entities.ColumnID]ColumnStats, len(entities.Columns)),
		Ratings:    make(map[int]int, entities.MaxRating),
		Categories: make(map[string]int),
		Authors:    make(map[string]int),
	}
	for r := 1; r <= entities.MaxRating; r++ {
		stats.Ratings[r] = 0
	}

	for _, column := range entities.Columns {
		books := snapshot.Columns[column]
		stats.Columns[column] = ColumnStats{Count: len(books), Title: column.Title()}
		stats.TotalBooks += len(books)

		for _, book := range books {
			if book.Rating >= 1 && book.Rating <= entities.MaxRating {
				stats.Ratings[book.Rating]++
			}
			for _, category := range book.Categories {
				stats.Categories[category]++
			}
			for _, author := range book.Authors {
				stats.Authors[author]++
			}
			if book.DateAdded.IsZero() {
				continue
			}
			added := book.DateAdded
			if stats.Dates.OldestBook == nil || added.Before(*stats.Dates.OldestBook) {
				stats.Dates.OldestBook = &added
			}
			if stats.Dates.NewestBook == nil || added.After(*stats.Dates.NewestBook) {
				stats.Dates.NewestBook = &added
			}
		}
	}
	return stats
}
