package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document represents one uploaded artifact of a required type, tied to one
// application. At most one row exists per (application, type); a re-upload
// replaces the stored artifact reference.
type Document struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	ApplicationID string     `gorm:"size:36;not null;uniqueIndex:idx_documents_application_type" json:"application_id"`
	Type          string     `gorm:"size:30;not null;uniqueIndex:idx_documents_application_type" json:"type"`
	StoragePath   string     `gorm:"not null" json:"storage_path"`
	ReviewStatus  string     `gorm:"default:PENDING" json:"review_status"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	ReviewedBy    *string    `json:"reviewed_by"`
	ReviewNotes   *string    `gorm:"type:text" json:"review_notes"`
	UploadedBy    string     `gorm:"not null" json:"uploaded_by"`
	CreatedAt     time.Time  `json:"uploaded_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Document
func (Document) TableName() string {
	return "documents"
}

// BeforeCreate hook for setting defaults
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.ReviewStatus == "" {
		d.ReviewStatus = ReviewStatusPending
	}
	return nil
}

// Document type constants
const (
	DocumentTypeID               = "ID_DOCUMENT"
	DocumentTypeSelfieWithID     = "SELFIE_WITH_ID"
	DocumentTypePayslip          = "PAYSLIP"
	DocumentTypeProofOfResidence = "PROOF_OF_RESIDENCE"
)

// RequiredDocumentTypes is the fixed set needed before an application is
// document-complete. Status derivation runs over exactly this set.
var RequiredDocumentTypes = []string{
	DocumentTypeID,
	DocumentTypeSelfieWithID,
	DocumentTypePayslip,
	DocumentTypeProofOfResidence,
}

// ValidDocumentType reports whether t is one of the required set.
func ValidDocumentType(t string) bool {
	for _, v := range RequiredDocumentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Document review status constants
const (
	ReviewStatusPending  = "PENDING"
	ReviewStatusVerified = "VERIFIED"
	ReviewStatusRejected = "REJECTED"
)

// ValidReviewStatus reports whether s is a known document review status.
func ValidReviewStatus(s string) bool {
	return s == ReviewStatusPending || s == ReviewStatusVerified || s == ReviewStatusRejected
}
