package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zarlend/zarlend-api/internal/repository"
	"github.com/zarlend/zarlend-api/pkg/logger"
)

// RateLimitService gates abusable write operations by counting recent events
// per (identity, action) inside a sliding window. Counting is approximate
// under concurrency (at most one extra event per window can slip in), which is
// acceptable; an unavailable store is not, so a failed count denies.
type RateLimitService struct {
	repo repository.RateLimitRepository
}

func NewRateLimitService(repo repository.RateLimitRepository) *RateLimitService {
	return &RateLimitService{repo: repo}
}

// Allow reports whether subject may perform action given max events per
// window. A count failure fails closed: the caller sees a denial plus the
// error, never an unlimited bypass.
func (s *RateLimitService) Allow(ctx context.Context, subject, action string, window time.Duration, max int) (bool, error) {
	since := time.Now().Add(-window)
	count, err := s.repo.CountSince(ctx, subject, action, since)
	if err != nil {
		logger.Error("rate limit count failed, denying", "subject", subject, "action", action, "error", err)
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	return count < int64(max), nil
}

// Record appends one event for subject/action. Call it only after the gated
// side effect succeeded so failed attempts do not consume quota.
func (s *RateLimitService) Record(ctx context.Context, subject, action string) error {
	return s.repo.Create(ctx, subject, action)
}

// PurgeOlderThan removes events past the retention horizon. Wired to the
// background scheduler, not to any request path.
func (s *RateLimitService) PurgeOlderThan(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	removed, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Info("purged rate limit events", "removed", removed)
	}
	return nil
}
