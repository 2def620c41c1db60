package models

import "time"

// Attachment holds the stored-file payload of a file-kind message copy.
// Each mailbox copy of a file message owns its own attachment row; the
// rows reference the same stored blob under the receiver's directory.
type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	MessageRowID uint      `gorm:"not null;index" json:"-"`
	OriginalName string    `gorm:"not null;size:255" json:"original_name"`
	StoredName   string    `gorm:"not null;size:255" json:"stored_name"`
	ContentType  string    `gorm:"size:100" json:"content_type,omitempty"`
	StoragePath  string    `gorm:"not null;size:500" json:"-"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedAt   time.Time `gorm:"not null" json:"uploaded_at"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
