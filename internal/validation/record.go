// Package validation decides whether book records and persisted snapshots are
// well-formed. Nothing in here returns an error: malformed input is dropped or
// replaced by the empty default.
package validation

import (
	"bytes"
	"encoding/json"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// IsValidRecord reports whether a decoded JSON value looks like a book record:
// an object with non-empty string "id" and "title" fields.
func IsValidRecord(candidate any) bool {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return false
	}
	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return false
	}
	title, ok := obj["title"].(string)
	return ok && title != ""
}

// IsValidBook is the typed form of IsValidRecord.
func IsValidBook(b entities.Book) bool {
	return b.ID != "" && b.Title != ""
}

// Report describes what SanitizeSnapshotReport discarded or repaired.
type Report struct {
	Unreadable        bool                `json:"unreadable"`
	ColumnsReset      []entities.ColumnID `json:"columns_reset,omitempty"`
	EntriesDropped    int                 `json:"entries_dropped"`
	DuplicatesDropped int                 `json:"duplicates_dropped"`
	StatusRepaired    int                 `json:"status_repaired"`
	FieldsReset       int                 `json:"fields_reset"`
}

// Changed reports whether the sanitized snapshot differs from its input.
func (r Report) Changed() bool {
	return r.Unreadable || len(r.ColumnsReset) > 0 || r.EntriesDropped > 0 ||
		r.DuplicatesDropped > 0 || r.StatusRepaired > 0 || r.FieldsReset > 0
}

// SanitizeSnapshot decodes a persisted payload into a structurally sound snapshot.
func SanitizeSnapshot(raw []byte) entities.Snapshot {
	snapshot, _ := SanitizeSnapshotReport(raw)
	return snapshot
}

// SanitizeSnapshotReport is SanitizeSnapshot plus a description of the repairs.
//
// Columns that are not arrays become empty and entries failing IsValidRecord are
// dropped. Other fields of a kept entry are converted leniently; one that cannot
// be converted is zeroed, never the reason to drop the entry. An id seen twice
// keeps its first occurrence and every record's status is set to the column
// holding it. A payload that is not a JSON object yields the empty default
// snapshot.
func SanitizeSnapshotReport(raw []byte) (entities.Snapshot, Report) {
	var report Report
	snapshot := entities.NewSnapshot()

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		report.Unreadable = len(bytes.TrimSpace(raw)) > 0
		return snapshot, report
	}

	seen := make(map[string]struct{})
	for _, column := range entities.Columns {
		value, ok := top[string(column)]
		if !ok || isNull(value) {
			continue
		}

		var entries []json.RawMessage
		if err := json.Unmarshal(value, &entries); err != nil {
			report.ColumnsReset = append(report.ColumnsReset, column)
			continue
		}

		books := make([]entities.Book, 0, len(entries))
		for _, entry := range entries {
			book, reset, ok := decodeBook(entry)
			if !ok {
				report.EntriesDropped++
				continue
			}
			if _, dup := seen[book.ID]; dup {
				report.DuplicatesDropped++
				continue
			}
			seen[book.ID] = struct{}{}
			report.FieldsReset += reset

			if book.Status != column {
				book.Status = column
				report.StatusRepaired++
			}
			books = append(books, book)
		}
		snapshot.Columns[column] = books
	}

	if value, ok := top[entities.MetadataKey]; ok {
		var meta entities.SnapshotMetadata
		if err := json.Unmarshal(value, &meta); err == nil {
			snapshot.Metadata = meta
			snapshot.Metadata.LastSaved = meta.LastSaved.UTC()
		}
	}
	if snapshot.Metadata.Version == "" {
		snapshot.Metadata.Version = entities.SnapshotVersion
	}
	snapshot.Metadata.TotalBooks = snapshot.TotalBooks()

	return snapshot, report
}

func decodeBook(entry json.RawMessage) (entities.Book, int, bool) {
	var candidate any
	if err := json.Unmarshal(entry, &candidate); err != nil || !IsValidRecord(candidate) {
		return entities.Book{}, 0, false
	}
	book, reset := decodeRecord(candidate.(map[string]any))
	return normalize(book), reset, true
}

// normalize puts a decoded book in the canonical form that survives a JSON
// round trip unchanged.
func normalize(b entities.Book) entities.Book {
	b.DateAdded = b.DateAdded.UTC()
	b.DateStatusChanged = b.DateStatusChanged.UTC()
	b.DateModified = b.DateModified.UTC()
	if len(b.Categories) == 0 {
		b.Categories = nil
	}
	if len(b.Authors) == 0 {
		b.Authors = []string{entities.UnknownAuthor}
	}
	return b
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
