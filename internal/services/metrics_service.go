package services

import (
	"context"
	"time"

	"github.com/zarlend/zarlend-api/internal/models"
	"github.com/zarlend/zarlend-api/internal/repository"
)

// MetricsService computes the admin dashboard counters.
type MetricsService struct {
	repos *repository.Repositories
}

func NewMetricsService(repos *repository.Repositories) *MetricsService {
	return &MetricsService{repos: repos}
}

// Overview is the headline counter set for the admin dashboard.
type Overview struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Declined  int64 `json:"declined"`
	NeedsInfo int64 `json:"needs_info"`
	ThisWeek  int64 `json:"this_week"`
}

// GetOverview returns application totals overall, per status, and for the
// trailing seven days.
func (s *MetricsService) GetOverview(ctx context.Context) (*Overview, error) {
	byStatus, err := s.repos.Metrics.GroupByStatus(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Metrics.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	thisWeek, err := s.repos.Metrics.CountCreatedSince(ctx, weekAgo)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Total:     total,
		Pending:   byStatus[models.ApplicationStatusPending],
		Approved:  byStatus[models.ApplicationStatusApproved],
		Declined:  byStatus[models.ApplicationStatusDeclined],
		NeedsInfo: byStatus[models.ApplicationStatusNeedsInfo],
		ThisWeek:  thisWeek,
	}, nil
}

// GroupByStatus exposes the per-status counts for list headers.
func (s *MetricsService) GroupByStatus(ctx context.Context) (map[string]int64, error) {
	return s.repos.Metrics.GroupByStatus(ctx)
}
