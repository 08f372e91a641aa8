package models

import (
	"time"
)

// UploadLog is an immutable audit record of one accepted document upload or
// replacement. Rows are only ever appended.
type UploadLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID string    `gorm:"size:36;not null;index" json:"application_id"`
	UploadedBy    string    `gorm:"not null" json:"uploaded_by"`
	DocumentType  string    `gorm:"size:30;not null" json:"document_type"`
	StoragePath   string    `gorm:"not null" json:"storage_path"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for UploadLog
func (UploadLog) TableName() string {
	return "upload_logs"
}
