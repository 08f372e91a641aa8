package models

import (
	"time"
)

// Audit event kinds
const (
	AuditKindReview = "REVIEW"
	AuditKindUpload = "UPLOAD"
)

// AuditEvent is one entry of the merged per-application audit feed. Kind tags
// the variant; exactly one of Review/Upload is set. Consumers switch on Kind.
type AuditEvent struct {
	ID        uint              `json:"id"`
	Kind      string            `json:"kind"`
	Actor     string            `json:"actor"`
	CreatedAt time.Time         `json:"created_at"`
	Review    *ReviewEventData  `json:"review,omitempty"`
	Upload    *UploadEventData  `json:"upload,omitempty"`
}

// ReviewEventData carries the diff captured by a ReviewLog entry.
type ReviewEventData struct {
	OldStatus string  `json:"old_status"`
	NewStatus string  `json:"new_status"`
	OldNotes  *string `json:"old_notes"`
	NewNotes  *string `json:"new_notes"`
}

// UploadEventData carries the artifact reference captured by an UploadLog entry.
type UploadEventData struct {
	DocumentType string `json:"document_type"`
	StoragePath  string `json:"storage_path"`
	UploadedBy   string `json:"uploaded_by"`
}
