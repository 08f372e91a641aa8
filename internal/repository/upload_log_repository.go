package repository

import (
	"context"

	"github.com/zarlend/zarlend-api/internal/models"
	"gorm.io/gorm"
)

// UploadLogRepository defines the interface for upload log data access.
// Append-only, like ReviewLogRepository.
type UploadLogRepository interface {
	Create(ctx context.Context, entry *models.UploadLog) error
	ListByApplication(ctx context.Context, applicationID string, limit int) ([]models.UploadLog, error)
}

type uploadLogRepository struct {
	db *gorm.DB
}

// NewUploadLogRepository creates a new upload log repository
func NewUploadLogRepository(db *gorm.DB) UploadLogRepository {
	return &uploadLogRepository{db: db}
}

func (r *uploadLogRepository) Create(ctx context.Context, entry *models.UploadLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *uploadLogRepository) ListByApplication(ctx context.Context, applicationID string, limit int) ([]models.UploadLog, error) {
	var logs []models.UploadLog
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
