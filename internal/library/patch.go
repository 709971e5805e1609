package library

import (
	"fmt"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// BookPatch lists the fields UpdateBook may change. Nil fields are left as
// they are. The id and status cannot be patched; use MoveBook for status.
type BookPatch struct {
	Title    *string   `json:"title,omitempty"`
	Authors  *[]string `json:"authors,omitempty"`
	Rating   *int      `json:"rating,omitempty"`
	Comment  *string   `json:"comment,omitempty"`
	Progress *int      `json:"progress,omitempty"`

	Subtitle      *string   `json:"subtitle,omitempty"`
	Publisher     *string   `json:"publisher,omitempty"`
	PublishedDate *string   `json:"publishedDate,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Thumbnail     *string   `json:"thumbnail,omitempty"`
	Cover         *string   `json:"cover,omitempty"`
	PageCount     *int      `json:"pageCount,omitempty"`
	Categories    *[]string `json:"categories,omitempty"`
	Language      *string   `json:"language,omitempty"`
	ISBN          *string   `json:"isbn,omitempty"`
	PreviewLink   *string   `json:"previewLink,omitempty"`
	InfoLink      *string   `json:"infoLink,omitempty"`
}

// DescriptivePatch builds a patch carrying only the catalogue metadata of b,
// leaving the user's rating, comment and progress alone.
func DescriptivePatch(b entities.Book) BookPatch {
	p := BookPatch{
		Subtitle:      &b.Subtitle,
		Publisher:     &b.Publisher,
		PublishedDate: &b.PublishedDate,
		Description:   &b.Description,
		Thumbnail:     &b.Thumbnail,
		Cover:         &b.Cover,
		PageCount:     &b.PageCount,
		Language:      &b.Language,
		ISBN:          &b.ISBN,
		PreviewLink:   &b.PreviewLink,
		InfoLink:      &b.InfoLink,
	}
	if len(b.Categories) > 0 {
		categories := append([]string(nil), b.Categories...)
		p.Categories = &categories
	}
	return p
}

func (p BookPatch) validate() error {
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidRecord)
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > entities.MaxRating) {
		return fmt.Errorf("%w: rating must be between 0 and %d", ErrInvalidRecord, entities.MaxRating)
	}
	if p.Progress != nil && (*p.Progress < 0 || *p.Progress > entities.MaxProgress) {
		return fmt.Errorf("%w: progress must be between 0 and %d", ErrInvalidRecord, entities.MaxProgress)
	}
	if p.PageCount != nil && *p.PageCount < 0 {
		return fmt.Errorf("%w: page count cannot be negative", ErrInvalidRecord)
	}
	return nil
}

// apply merges p into b and returns the JSON names of the fields that changed.
func (p BookPatch) apply(b *entities.Book) []string {
	var changed []string

	setString := func(name string, dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setInt := func(name string, dst *int, src *int) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setList := func(name string, dst *[]string, src *[]string) {
		if src != nil && !equalStrings(*dst, *src) {
			*dst = append([]string(nil), (*src)...)
			changed = append(changed, name)
		}
	}

	setString("title", &b.Title, p.Title)
	setList("authors", &b.Authors, p.Authors)
	setInt("rating", &b.Rating, p.Rating)
	setString("comment", &b.Comment, p.Comment)
	setInt("progress", &b.Progress, p.Progress)
	setString("subtitle", &b.Subtitle, p.Subtitle)
	setString("publisher", &b.Publisher, p.Publisher)
	setString("publishedDate", &b.PublishedDate, p.PublishedDate)
	setString("description", &b.Description, p.Description)
	setString("thumbnail", &b.Thumbnail, p.Thumbnail)
	setString("cover", &b.Cover, p.Cover)
	setInt("pageCount", &b.PageCount, p.PageCount)
	setList("categories", &b.Categories, p.Categories)
	setString("language", &b.Language, p.Language)
	setString("isbn", &b.ISBN, p.ISBN)
	setString("previewLink", &b.PreviewLink, p.PreviewLink)
	setString("infoLink", &b.InfoLink, p.InfoLink)

	if len(b.Authors) == 0 {
		b.Authors = []string{entities.UnknownAuthor}
	}
	if len(b.Categories) == 0 {
		b.Categories = nil
	}
	return changed
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Diff returns the fields p would change on b without modifying it.
func (p BookPatch) Diff(b entities.Book) []string {
	c := b.Clone()
	return p.apply(&c)
}
