package models

import (
	"time"
)

// ReviewLog is an immutable audit record of one accepted status/notes change
// made by a reviewer on an application. Rows are only ever appended.
type ReviewLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID string    `gorm:"size:36;not null;index" json:"application_id"`
	ActorSubject  string    `gorm:"not null" json:"actor_subject"`
	OldStatus     string    `gorm:"size:20;not null" json:"old_status"`
	NewStatus     string    `gorm:"size:20;not null" json:"new_status"`
	OldNotes      *string   `gorm:"type:text" json:"old_notes"`
	NewNotes      *string   `gorm:"type:text" json:"new_notes"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for ReviewLog
func (ReviewLog) TableName() string {
	return "review_logs"
}
