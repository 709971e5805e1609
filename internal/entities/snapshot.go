package entities

import (
	"encoding/json"
	"time"
)

// SnapshotVersion is the schema version written into every persisted snapshot.
const SnapshotVersion = "1.0.0"

// MetadataKey is the reserved snapshot key holding SnapshotMetadata.
const MetadataKey = "_metadata"

type SnapshotMetadata struct {
	LastSaved  time.Time `json:"lastSaved"`
	Version    string    `json:"version"`
	TotalBooks int       `json:"totalBooks"`
}

// Snapshot is the unit of persistence: four ordered columns plus metadata.
//
// The JSON form is a flat object mapping each column id to an array of books,
// with the metadata stored under "_metadata".
type Snapshot struct {
	Columns  map[ColumnID][]Book
	Metadata SnapshotMetadata
}

// NewSnapshot returns the empty default snapshot.
func NewSnapshot() Snapshot {
	s := Snapshot{Columns: make(map[ColumnID][]Book, len(Columns))}
	for _, id := range Columns {
		s.Columns[id] = []Book{}
	}
	s.Metadata.Version = SnapshotVersion
	return s
}

// TotalBooks counts the books across all known columns.
func (s Snapshot) TotalBooks() int {
	total := 0
	for _, id := range Columns {
		total += len(s.Columns[id])
	}
	return total
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Columns:  make(map[ColumnID][]Book, len(Columns)),
		Metadata: s.Metadata,
	}
	for _, id := range Columns {
		books := s.Columns[id]
		cloned := make([]Book, len(books))
		for i, b := range books {
			cloned[i] = b.Clone()
		}
		c.Columns[id] = cloned
	}
	return c
}

// Find returns the column and index holding id, or ok=false.
func (s Snapshot) Find(id string) (column ColumnID, index int, ok bool) {
	for _, col := range Columns {
		for i, b := range s.Columns[col] {
			if b.ID == id {
				return col, i, true
			}
		}
	}
	return "", -1, false
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(Columns)+1)
	for _, id := range Columns {
		books := s.Columns[id]
		if books == nil {
			books = []Book{}
		}
		out[string(id)] = books
	}
	out[MetadataKey] = s.Metadata
	return json.Marshal(out)
}
