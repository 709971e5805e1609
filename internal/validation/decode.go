package validation

import (
	"time"

	"github.com/spf13/cast"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// decodeRecord builds a book from a record that passed IsValidRecord. Fields
// are converted one by one: a numeric string still yields a number and a
// date-only string still yields a date. A present field that cannot be
// converted gets its zero value and is counted in reset.
func decodeRecord(obj map[string]any) (book entities.Book, reset int) {
	str := func(key string) string {
		v, ok := obj[key]
		if !ok || v == nil {
			return ""
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			reset++
		}
		return s
	}
	num := func(key string) int {
		v, ok := obj[key]
		if !ok || v == nil {
			return 0
		}
		if s, isString := v.(string); isString && s == "" {
			return 0
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			reset++
		}
		return n
	}
	date := func(key string) (t time.Time) {
		v, ok := obj[key]
		if !ok || v == nil {
			return t
		}
		// Only strings carry dates; a bare number has no agreed epoch unit.
		s, isString := v.(string)
		if !isString {
			reset++
			return t
		}
		if s == "" {
			return t
		}
		parsed, err := cast.ToTimeE(s)
		if err != nil {
			reset++
			return t
		}
		return parsed
	}
	list := func(key string) []string {
		v, ok := obj[key]
		if !ok || v == nil {
			return nil
		}
		switch items := v.(type) {
		case string:
			if items == "" {
				return nil
			}
			return []string{items}
		case []any:
			out := make([]string, 0, len(items))
			for _, item := range items {
				s, err := cast.ToStringE(item)
				if err != nil || s == "" {
					reset++
					continue
				}
				out = append(out, s)
			}
			return out
		default:
			reset++
			return nil
		}
	}

	book = entities.Book{
		ID:      obj["id"].(string),
		Title:   obj["title"].(string),
		Authors: list("authors"),
		Status:  entities.ColumnID(str("status")),

		Rating:   num("rating"),
		Comment:  str("comment"),
		Progress: num("progress"),

		DateAdded:         date("dateAdded"),
		DateStatusChanged: date("dateStatusChanged"),
		DateModified:      date("dateModified"),

		Subtitle:      str("subtitle"),
		Publisher:     str("publisher"),
		PublishedDate: str("publishedDate"),
		Description:   str("description"),
		Thumbnail:     str("thumbnail"),
		Cover:         str("cover"),
		PageCount:     num("pageCount"),
		Categories:    list("categories"),
		Language:      str("language"),
		ISBN:          str("isbn"),
		PreviewLink:   str("previewLink"),
		InfoLink:      str("infoLink"),
		Source:        entities.BookSource(str("source")),
	}
	return book, reset
}
