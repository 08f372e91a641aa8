package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zarlend/zarlend-api/internal/models"
	"github.com/zarlend/zarlend-api/internal/repository"
	"github.com/zarlend/zarlend-api/internal/storage"
	"github.com/zarlend/zarlend-api/pkg/logger"
	"gorm.io/gorm"
)

// DocumentService owns uploads and the document review path. Reviewing a
// single document recomputes the application status from the full required
// set, so the application always reflects the latest evidence.
type DocumentService struct {
	repos        *repository.Repositories
	store        *storage.LocalStorage
	rates        *RateLimitService
	locks        *keyedLocks
	uploadWindow time.Duration
	uploadMax    int
	maxBytes     int64
}

func NewDocumentService(repos *repository.Repositories, store *storage.LocalStorage, rates *RateLimitService, locks *keyedLocks, uploadWindow time.Duration, uploadMax int, maxBytes int64) *DocumentService {
	return &DocumentService{
		repos:        repos,
		store:        store,
		rates:        rates,
		locks:        locks,
		uploadWindow: uploadWindow,
		uploadMax:    uploadMax,
		maxBytes:     maxBytes,
	}
}

// UploadInput carries one multipart file destined for an application.
type UploadInput struct {
	ApplicationID string
	DocumentType  string
	Filename      string
	ContentType   string
	Data          []byte
}

// Upload validates and stores one document for the caller's own application.
// A re-upload of the same type replaces the previous file and resets nothing
// on the review side; verification state lives on the document row and is only
// touched by reviewers.
func (s *DocumentService) Upload(ctx context.Context, subject string, in UploadInput) (*models.Document, error) {
	if !models.ValidDocumentType(in.DocumentType) {
		return nil, validationError("invalid document type: %s", in.DocumentType)
	}
	if int64(len(in.Data)) > s.maxBytes {
		return nil, validationError("file exceeds the %dMB limit", s.maxBytes/(1024*1024))
	}
	if !storage.IsValidContentType(in.ContentType) {
		return nil, validationError("unsupported file type: %s", in.ContentType)
	}
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !storage.IsValidExtension(ext) {
		return nil, validationError("unsupported file extension: %s", ext)
	}

	allowed, err := s.rates.Allow(ctx, subject, models.RateActionUpload, s.uploadWindow, s.uploadMax)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: too many uploads, please try again later", ErrRateLimited)
	}

	user, err := s.repos.User.FindBySubject(ctx, subject)
	if err != nil {
		return nil, translateNotFound(err)
	}
	app, err := s.repos.Application.FindByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if app.UserID != user.ID {
		return nil, fmt.Errorf("%w: application belongs to another user", ErrForbidden)
	}

	relativePath := fmt.Sprintf("applications/%s/%s%s", app.ID, in.DocumentType, ext)
	if err := s.store.Put(relativePath, in.Data, in.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	var doc *models.Document
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		doc = &models.Document{
			ApplicationID: app.ID,
			Type:          in.DocumentType,
			StoragePath:   relativePath,
			ReviewStatus:  models.ReviewStatusPending,
			UploadedBy:    subject,
		}
		if err := tx.Document.Upsert(ctx, doc); err != nil {
			return err
		}
		if err := tx.Application.TouchDocsUpdated(ctx, app.ID, time.Now()); err != nil {
			return err
		}
		return tx.UploadLog.Create(ctx, &models.UploadLog{
			ApplicationID: app.ID,
			UploadedBy:    subject,
			DocumentType:  in.DocumentType,
			StoragePath:   relativePath,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.rates.Record(ctx, subject, models.RateActionUpload); err != nil {
		logger.Warn("failed to record rate limit event", "subject", subject, "action", models.RateActionUpload, "error", err)
	}

	return doc, nil
}

// ReviewSummary is the outcome of one derivation pass over the required
// document set.
type ReviewSummary struct {
	MissingAny    bool   `json:"missing_any"`
	AnyRejected   bool   `json:"any_rejected"`
	AllVerified   bool   `json:"all_verified"`
	DerivedStatus string `json:"derived_status"`
}

// deriveStatus folds the required document set into an application status.
// A missing document counts the same as an unverified one. Rejection wins
// over everything; a fully verified set currently still lands on PENDING so
// the final decision stays with a human reviewer.
func deriveStatus(docs []models.Document) ReviewSummary {
	byType := make(map[string]*models.Document, len(docs))
	for i := range docs {
		byType[docs[i].Type] = &docs[i]
	}

	summary := ReviewSummary{AllVerified: true}
	for _, required := range models.RequiredDocumentTypes {
		doc, ok := byType[required]
		if !ok {
			summary.MissingAny = true
			summary.AllVerified = false
			continue
		}
		switch doc.ReviewStatus {
		case models.ReviewStatusRejected:
			summary.AnyRejected = true
			summary.AllVerified = false
		case models.ReviewStatusVerified:
		default:
			summary.AllVerified = false
		}
	}

	switch {
	case summary.AnyRejected:
		summary.DerivedStatus = models.ApplicationStatusNeedsInfo
	case summary.AllVerified:
		// All evidence checks out; promotion beyond PENDING is a staff call.
		summary.DerivedStatus = models.ApplicationStatusPending
	default:
		summary.DerivedStatus = models.ApplicationStatusPending
	}
	return summary
}

// Review records a reviewer's verdict on one document and immediately
// re-derives the owning application's status from the required set. The
// derived status overwrites the application unconditionally; this recorded
// write is deliberately absent from the review log, which tracks direct
// decisions only.
func (s *DocumentService) Review(ctx context.Context, actor, documentID, reviewStatus string, notes *string) (*models.Document, *ReviewSummary, error) {
	if !models.ValidReviewStatus(reviewStatus) {
		return nil, nil, validationError("invalid review status: %s", reviewStatus)
	}

	located, err := s.repos.Document.FindByID(ctx, documentID)
	if err != nil {
		return nil, nil, translateNotFound(err)
	}

	unlock := s.locks.Lock("app:" + located.ApplicationID)
	defer unlock()

	var (
		doc     *models.Document
		summary ReviewSummary
	)
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		doc, err = tx.Document.FindByID(ctx, documentID)
		if err != nil {
			return translateNotFound(err)
		}

		now := time.Now()
		doc.ReviewStatus = reviewStatus
		doc.ReviewedAt = &now
		doc.ReviewedBy = &actor
		if notes != nil {
			doc.ReviewNotes = notes
		}
		if err := tx.Document.Update(ctx, doc); err != nil {
			return err
		}

		docs, err := tx.Document.FindByApplicationAndTypes(ctx, doc.ApplicationID, models.RequiredDocumentTypes)
		if err != nil {
			return err
		}
		summary = deriveStatus(docs)

		return tx.Application.SetDerivedStatus(ctx, doc.ApplicationID, summary.DerivedStatus, actor, now)
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, &summary, nil
}

// ListByApplication returns every document attached to an application,
// regardless of type, for the admin detail view.
func (s *DocumentService) ListByApplication(ctx context.Context, applicationID string) ([]models.Document, error) {
	if _, err := s.repos.Application.FindByID(ctx, applicationID); err != nil {
		return nil, translateNotFound(err)
	}
	return s.repos.Document.FindByApplication(ctx, applicationID)
}

// UploadStatus is one required slot in the checklist shown to the applicant.
type UploadStatus struct {
	Type         string     `json:"type"`
	Uploaded     bool       `json:"uploaded"`
	ReviewStatus string     `json:"review_status,omitempty"`
	ReviewNotes  *string    `json:"review_notes,omitempty"`
	UploadedAt   *time.Time `json:"uploaded_at,omitempty"`
}

// ChecklistForSubject reports, for the caller's latest application, which
// required documents are present and where each stands in review.
func (s *DocumentService) ChecklistForSubject(ctx context.Context, subject string) (string, []UploadStatus, error) {
	user, err := s.repos.User.FindBySubject(ctx, subject)
	if err != nil {
		return "", nil, translateNotFound(err)
	}
	apps, err := s.repos.Application.ListByUser(ctx, user.ID, 1)
	if err != nil {
		return "", nil, err
	}
	if len(apps) == 0 {
		return "", nil, ErrNotFound
	}
	app := apps[0]

	docs, err := s.repos.Document.FindByApplication(ctx, app.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, err
	}
	byType := make(map[string]*models.Document, len(docs))
	for i := range docs {
		byType[docs[i].Type] = &docs[i]
	}

	checklist := make([]UploadStatus, 0, len(models.RequiredDocumentTypes))
	for _, required := range models.RequiredDocumentTypes {
		entry := UploadStatus{Type: required}
		if doc, ok := byType[required]; ok {
			uploadedAt := doc.CreatedAt
			entry.Uploaded = true
			entry.ReviewStatus = doc.ReviewStatus
			entry.ReviewNotes = doc.ReviewNotes
			entry.UploadedAt = &uploadedAt
		}
		checklist = append(checklist, entry)
	}
	return app.ID, checklist, nil
}
