package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zarlend/zarlend-api/internal/repository"
	"github.com/zarlend/zarlend-api/pkg/logger"
)

type mockRateLimitRepo struct {
	repository.RateLimitRepository
	mockCountSince      func(ctx context.Context, subject, action string, since time.Time) (int64, error)
	mockCreate          func(ctx context.Context, subject, action string) error
	mockDeleteOlderThan func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockRateLimitRepo) CountSince(ctx context.Context, subject, action string, since time.Time) (int64, error) {
	return m.mockCountSince(ctx, subject, action, since)
}

func (m *mockRateLimitRepo) Create(ctx context.Context, subject, action string) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, subject, action)
	}
	return nil
}

func (m *mockRateLimitRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.mockDeleteOlderThan(ctx, cutoff)
}

func TestRateLimitService_Allow_UnderLimit(t *testing.T) {
	logger.Setup("test")

	mockRepo := &mockRateLimitRepo{
		mockCountSince: func(ctx context.Context, subject, action string, since time.Time) (int64, error) {
			return 2, nil
		},
	}
	service := NewRateLimitService(mockRepo)

	allowed, err := service.Allow(context.Background(), "user-1", "APPLY", time.Hour, 3)
	assert.NoError(t, err)
	assert.True(t, allowed, "2 events with a max of 3 should be allowed")
}

func TestRateLimitService_Allow_AtLimit(t *testing.T) {
	logger.Setup("test")

	mockRepo := &mockRateLimitRepo{
		mockCountSince: func(ctx context.Context, subject, action string, since time.Time) (int64, error) {
			return 3, nil
		},
	}
	service := NewRateLimitService(mockRepo)

	allowed, err := service.Allow(context.Background(), "user-1", "APPLY", time.Hour, 3)
	assert.NoError(t, err)
	assert.False(t, allowed, "3 events with a max of 3 should be denied")
}

func TestRateLimitService_Allow_WindowStart(t *testing.T) {
	logger.Setup("test")

	var gotSince time.Time
	mockRepo := &mockRateLimitRepo{
		mockCountSince: func(ctx context.Context, subject, action string, since time.Time) (int64, error) {
			gotSince = since
			return 0, nil
		},
	}
	service := NewRateLimitService(mockRepo)

	before := time.Now().Add(-time.Hour)
	_, err := service.Allow(context.Background(), "user-1", "UPLOAD", time.Hour, 20)
	after := time.Now().Add(-time.Hour)

	assert.NoError(t, err)
	assert.False(t, gotSince.Before(before))
	assert.False(t, gotSince.After(after))
}

func TestRateLimitService_Allow_CountErrorDenies(t *testing.T) {
	logger.Setup("test")

	mockRepo := &mockRateLimitRepo{
		mockCountSince: func(ctx context.Context, subject, action string, since time.Time) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	service := NewRateLimitService(mockRepo)

	allowed, err := service.Allow(context.Background(), "user-1", "APPLY", time.Hour, 3)
	assert.Error(t, err)
	assert.False(t, allowed, "a failed count must deny, never bypass the limit")
}

func TestRateLimitService_PurgeOlderThan(t *testing.T) {
	logger.Setup("test")

	var gotCutoff time.Time
	mockRepo := &mockRateLimitRepo{
		mockDeleteOlderThan: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 5, nil
		},
	}
	service := NewRateLimitService(mockRepo)

	err := service.PurgeOlderThan(context.Background(), 24*time.Hour)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), gotCutoff, time.Minute)
}
