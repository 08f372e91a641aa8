package services

import (
	"context"
	"sort"

	"github.com/zarlend/zarlend-api/internal/models"
	"github.com/zarlend/zarlend-api/internal/repository"
)

// AuditService assembles the per-application activity feed from the two
// append-only logs. It never writes; entries are produced by the review and
// upload paths.
type AuditService struct {
	repos *repository.Repositories
}

func NewAuditService(repos *repository.Repositories) *AuditService {
	return &AuditService{repos: repos}
}

// Trail returns up to limit of the most recent review entries and up to limit
// of the most recent upload entries for the application, merged newest first.
// The limit applies to each log separately, so a feed can carry up to 2*limit
// events and a burst of one kind never crowds out the other. Ties on
// timestamp order REVIEW before UPLOAD, then newer id first, so the feed is
// stable across calls.
func (s *AuditService) Trail(ctx context.Context, applicationID string, limit int) ([]models.AuditEvent, error) {
	if _, err := s.repos.Application.FindByID(ctx, applicationID); err != nil {
		return nil, translateNotFound(err)
	}

	reviews, err := s.repos.ReviewLog.ListByApplication(ctx, applicationID, limit)
	if err != nil {
		return nil, err
	}
	uploads, err := s.repos.UploadLog.ListByApplication(ctx, applicationID, limit)
	if err != nil {
		return nil, err
	}

	events := make([]models.AuditEvent, 0, len(reviews)+len(uploads))
	for _, entry := range reviews {
		events = append(events, models.AuditEvent{
			ID:        entry.ID,
			Kind:      models.AuditKindReview,
			Actor:     entry.ActorSubject,
			CreatedAt: entry.CreatedAt,
			Review: &models.ReviewEventData{
				OldStatus: entry.OldStatus,
				NewStatus: entry.NewStatus,
				OldNotes:  entry.OldNotes,
				NewNotes:  entry.NewNotes,
			},
		})
	}
	for _, entry := range uploads {
		events = append(events, models.AuditEvent{
			ID:        entry.ID,
			Kind:      models.AuditKindUpload,
			Actor:     entry.UploadedBy,
			CreatedAt: entry.CreatedAt,
			Upload: &models.UploadEventData{
				DocumentType: entry.DocumentType,
				StoragePath:  entry.StoragePath,
				UploadedBy:   entry.UploadedBy,
			},
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID > b.ID
	})

	return events, nil
}
