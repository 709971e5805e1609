package entities

import "time"

type AuditEventType string

const (
	AuditEventBookAdded       AuditEventType = "bookAdded"
	AuditEventBookMoved       AuditEventType = "bookMoved"
	AuditEventBookUpdated     AuditEventType = "bookUpdated"
	AuditEventBookDeleted     AuditEventType = "bookDeleted"
	AuditEventLibraryReplaced AuditEventType = "libraryReplaced"
	AuditEventImport          AuditEventType = "import"
	AuditEventExport          AuditEventType = "export"
	AuditEventSettings        AuditEventType = "settings"
	AuditEventBackup          AuditEventType = "backup"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "book_move", "json_import"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	BookID      string         `gorm:"index;size:256" json:"book_id,omitempty"`
	FromColumn  ColumnID       `gorm:"size:20" json:"from_column,omitempty"`
	ToColumn    ColumnID       `gorm:"size:20" json:"to_column,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
