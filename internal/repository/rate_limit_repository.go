package repository

import (
	"context"
	"time"

	"github.com/zarlend/zarlend-api/internal/models"
	"gorm.io/gorm"
)

// RateLimitRepository defines the interface for rate limit event access
type RateLimitRepository interface {
	CountSince(ctx context.Context, subject, action string, since time.Time) (int64, error)
	Create(ctx context.Context, subject, action string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type rateLimitRepository struct {
	db *gorm.DB
}

// NewRateLimitRepository creates a new rate limit repository
func NewRateLimitRepository(db *gorm.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

func (r *rateLimitRepository) CountSince(ctx context.Context, subject, action string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RateLimitEvent{}).
		Where("subject = ? AND action = ? AND created_at >= ?", subject, action, since).
		Count(&count).Error
	return count, err
}

func (r *rateLimitRepository) Create(ctx context.Context, subject, action string) error {
	return r.db.WithContext(ctx).Create(&models.RateLimitEvent{
		Subject: subject,
		Action:  action,
	}).Error
}

// DeleteOlderThan purges events past the retention cutoff. Only the
// background job calls this; request paths never delete.
func (r *rateLimitRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.RateLimitEvent{})
	return res.RowsAffected, res.Error
}
