package models

import (
	"time"
)

// RateLimitEvent is one counted action by one identity. The limiter counts
// rows inside a trailing window; rows are never updated, only appended and
// eventually purged by the retention job.
type RateLimitEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Subject   string    `gorm:"not null;index:idx_rate_limit_subject_action_created" json:"subject"`
	Action    string    `gorm:"size:20;not null;index:idx_rate_limit_subject_action_created" json:"action"`
	CreatedAt time.Time `gorm:"index:idx_rate_limit_subject_action_created" json:"created_at"`
}

// TableName specifies the table name for RateLimitEvent
func (RateLimitEvent) TableName() string {
	return "rate_limit_events"
}

// Rate limited action constants
const (
	RateActionApply  = "APPLY"
	RateActionUpload = "UPLOAD"
)
