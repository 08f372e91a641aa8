package repository

import (
	"context"

	"github.com/zarlend/zarlend-api/internal/models"
	"gorm.io/gorm"
)

// ReviewLogRepository defines the interface for review log data access.
// The table is append-only; there is deliberately no update or delete.
type ReviewLogRepository interface {
	Create(ctx context.Context, entry *models.ReviewLog) error
	ListByApplication(ctx context.Context, applicationID string, limit int) ([]models.ReviewLog, error)
}

type reviewLogRepository struct {
	db *gorm.DB
}

// NewReviewLogRepository creates a new review log repository
func NewReviewLogRepository(db *gorm.DB) ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func (r *reviewLogRepository) Create(ctx context.Context, entry *models.ReviewLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *reviewLogRepository) ListByApplication(ctx context.Context, applicationID string, limit int) ([]models.ReviewLog, error) {
	var logs []models.ReviewLog
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
