package repository

import (
	"context"
	"time"

	"github.com/zarlend/zarlend-api/internal/models"
	"gorm.io/gorm"
)

// MetricsRepository exposes the aggregate reads behind the admin dashboard
type MetricsRepository interface {
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	GroupByStatus(ctx context.Context) (map[string]int64, error)
}

type metricsRepository struct {
	db *gorm.DB
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *gorm.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).Count(&count).Error
	return count, err
}

func (r *metricsRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *metricsRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *metricsRepository) GroupByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(models.ApplicationStatuses))
	for _, s := range models.ApplicationStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
