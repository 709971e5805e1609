package entities

import (
	"time"
)

type ColumnID string

const (
	ColumnToRead    ColumnID = "to-read"
	ColumnReading   ColumnID = "reading"
	ColumnRead      ColumnID = "read"
	ColumnFavorites ColumnID = "favorites"
)

// Columns lists the fixed collections in display order.
var Columns = []ColumnID{ColumnToRead, ColumnReading, ColumnRead, ColumnFavorites}

var columnTitles = map[ColumnID]string{
	ColumnToRead:    "À lire",
	ColumnReading:   "En cours",
	ColumnRead:      "Lu",
	ColumnFavorites: "Favoris",
}

// Valid reports whether c is one of the four fixed columns.
func (c ColumnID) Valid() bool {
	_, ok := columnTitles[c]
	return ok
}

// Title returns the display title of the column, or "" for unknown columns.
func (c ColumnID) Title() string {
	return columnTitles[c]
}

// Order returns the 1-based display position of the column, or 0 for unknown columns.
func (c ColumnID) Order() int {
	for i, id := range Columns {
		if id == c {
			return i + 1
		}
	}
	return 0
}

type BookSource string

const (
	BookSourceGoogleBooks BookSource = "google-books"
	BookSourceManual      BookSource = "manual"
)

const (
	UnknownAuthor      = "Auteur inconnu"
	UncategorizedLabel = "Non classé"

	MaxRating   = 5
	MaxProgress = 100
)

type Book struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Status  ColumnID `json:"status"`

	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Progress int    `json:"progress"`

	DateAdded         time.Time `json:"dateAdded"`
	DateStatusChanged time.Time `json:"dateStatusChanged"`
	DateModified      time.Time `json:"dateModified"`

	// Descriptive metadata copied from the lookup source
	Subtitle      string     `json:"subtitle,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"`
	Description   string     `json:"description,omitempty"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	Cover         string     `json:"cover,omitempty"`
	PageCount     int        `json:"pageCount,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
	Language      string     `json:"language,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
	PreviewLink   string     `json:"previewLink,omitempty"`
	InfoLink      string     `json:"infoLink,omitempty"`
	Source        BookSource `json:"source,omitempty"`
}

// Clone returns a copy of b that shares no slices with it.
func (b Book) Clone() Book {
	c := b
	if b.Authors != nil {
		c.Authors = append([]string(nil), b.Authors...)
	}
	if b.Categories != nil {
		c.Categories = append([]string(nil), b.Categories...)
	}
	return c
}

// CoverURL returns the best image URL for the book.
func (b Book) CoverURL() string {
	if b.Cover != "" {
		return b.Cover
	}
	return b.Thumbnail
}
