package entities

import "time"

// LibrarySnapshotKey is the row key of the single persisted library.
const LibrarySnapshotKey = "library"

// LibrarySnapshot stores one serialized Snapshot payload.
type LibrarySnapshot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Payload   string    `gorm:"type:text" json:"-"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LibrarySnapshot) TableName() string {
	return "library_snapshots"
}
