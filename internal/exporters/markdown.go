package exporters

import (
	"fmt"
	"strings"
	"time"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// GenerateMarkdown renders the library as a reading list, one section per
// column in display order.
func GenerateMarkdown(snapshot entities.Snapshot, now time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_source: %s\n", ExportSource)
	fmt.Fprintf(&builder, "content_type: reading_list\n")
	fmt.Fprintf(&builder, "created_at: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&builder, "total_books: %d\n", snapshot.TotalBooks())
	fmt.Fprintf(&builder, "---\n\n")

	for _, column := range entities.Columns {
		books := snapshot.Columns[column]
		fmt.Fprintf(&builder, "## %s (%d)\n\n", column.Title(), len(books))
		if len(books) == 0 {
			fmt.Fprintf(&builder, "_Aucun livre_\n\n")
			continue
		}
		for _, book := range books {
			writeBook(&builder, book)
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func writeBook(builder *strings.Builder, book entities.Book) {
	fmt.Fprintf(builder, "- **%s**", escapeMarkdown(book.Title))
	if len(book.Authors) > 0 {
		fmt.Fprintf(builder, ", %s", escapeMarkdown(strings.Join(book.Authors, ", ")))
	}
	if book.Rating > 0 {
		fmt.Fprintf(builder, " %s", stars(book.Rating))
	}
	if book.Status == entities.ColumnReading && book.Progress > 0 {
		fmt.Fprintf(builder, " (%d%%)", book.Progress)
	}
	builder.WriteString("\n")
	if book.Comment != "" {
		fmt.Fprintf(builder, "  > %s\n", strings.ReplaceAll(book.Comment, "\n", "\n  > "))
	}
}

func stars(rating int) string {
	if rating > entities.MaxRating {
		rating = entities.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", entities.MaxRating-rating)
}

var markdownEscaper = strings.NewReplacer("*", "\\*", "_", "\\_", "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
