package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application represents one applicant's loan request plus its review state.
// Name, national id, amount and term are fixed at intake; the review fields are
// written by staff (directly) or derived from the document set.
type Application struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	FullName        string     `gorm:"not null" json:"full_name"`
	NationalID      string     `gorm:"column:national_id;size:13;not null" json:"national_id"`
	AmountRequested int64      `gorm:"not null" json:"amount_requested"`
	RepayDays       int        `gorm:"not null" json:"repay_days"`
	Status          string     `gorm:"default:PENDING;index" json:"status"`
	AdminNotes      *string    `gorm:"type:text" json:"admin_notes"`
	ClientMessage   *string    `gorm:"type:text" json:"client_message"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewedBy      *string    `json:"reviewed_by"`
	DecisionAt      *time.Time `json:"decision_at"`
	DecidedBy       *string    `json:"decided_by"`
	DocsUpdatedAt   *time.Time `json:"docs_updated_at"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Associations
	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Documents  []Document  `gorm:"foreignKey:ApplicationID" json:"documents,omitempty"`
	ReviewLogs []ReviewLog `gorm:"foreignKey:ApplicationID" json:"review_logs,omitempty"`
	UploadLogs []UploadLog `gorm:"foreignKey:ApplicationID" json:"upload_logs,omitempty"`
}

// TableName specifies the table name for Application
func (Application) TableName() string {
	return "applications"
}

// BeforeCreate hook for setting defaults
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = ApplicationStatusPending
	}
	return nil
}

// Application status constants
const (
	ApplicationStatusPending   = "PENDING"
	ApplicationStatusApproved  = "APPROVED"
	ApplicationStatusDeclined  = "DECLINED"
	ApplicationStatusNeedsInfo = "NEEDS_INFO"
)

// ApplicationStatuses is the closed set of reviewable statuses.
var ApplicationStatuses = []string{
	ApplicationStatusPending,
	ApplicationStatusApproved,
	ApplicationStatusDeclined,
	ApplicationStatusNeedsInfo,
}

// ActiveApplicationStatuses are statuses that block a new intake for the same user.
var ActiveApplicationStatuses = []string{
	ApplicationStatusPending,
	ApplicationStatusNeedsInfo,
}

// ValidApplicationStatus reports whether s is one of the closed status set.
func ValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsActive returns true while the application still blocks a new intake.
func (a *Application) IsActive() bool {
	return a.Status == ApplicationStatusPending || a.Status == ApplicationStatusNeedsInfo
}

// Intake bounds. Amounts are whole rand.
const (
	MinAmountRequested = 500
	MaxAmountRequested = 50000
	MinRepayDays       = 1
	MaxRepayDays       = 31
	NationalIDLength   = 13
)

// ValidNationalID checks the 13-digit SA id number, including its Luhn checksum.
func ValidNationalID(s string) bool {
	if len(s) != NationalIDLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return luhnCheck(s)
}

func luhnCheck(value string) bool {
	sum := 0
	double := false
	for i := len(value) - 1; i >= 0; i-- {
		digit := int(value[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// ApplicationResponse is the JSON response format for applications
type ApplicationResponse struct {
	ID              string     `json:"id"`
	FullName        string     `json:"full_name"`
	NationalID      string     `json:"national_id"`
	AmountRequested int64      `json:"amount_requested"`
	RepayDays       int        `json:"repay_days"`
	Status          string     `json:"status"`
	AdminNotes      *string    `json:"admin_notes"`
	ClientMessage   *string    `json:"client_message"`
	ApplicantEmail  string     `json:"applicant_email,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	DecisionAt      *time.Time `json:"decision_at"`
	DocsUpdatedAt   *time.Time `json:"docs_updated_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToResponse converts Application to ApplicationResponse. The national id is
// masked; the stored value never leaves the service in full.
func (a *Application) ToResponse() ApplicationResponse {
	return ApplicationResponse{
		ID:              a.ID,
		FullName:        a.FullName,
		NationalID:      maskNationalID(a.NationalID),
		AmountRequested: a.AmountRequested,
		RepayDays:       a.RepayDays,
		Status:          a.Status,
		AdminNotes:      a.AdminNotes,
		ClientMessage:   a.ClientMessage,
		ApplicantEmail:  a.User.Email,
		ReviewedAt:      a.ReviewedAt,
		DecisionAt:      a.DecisionAt,
		DocsUpdatedAt:   a.DocsUpdatedAt,
		CreatedAt:       a.CreatedAt,
	}
}

// maskNationalID keeps the birthdate prefix and last two digits visible.
func maskNationalID(id string) string {
	if len(id) <= 8 {
		masked := ""
		for range id {
			masked += "*"
		}
		return masked
	}
	masked := id[:6]
	for i := 6; i < len(id)-2; i++ {
		masked += "*"
	}
	return masked + id[len(id)-2:]
}
