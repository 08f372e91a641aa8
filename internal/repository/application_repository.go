package repository

import (
	"context"
	"time"

	"github.com/zarlend/zarlend-api/internal/models"
	"gorm.io/gorm"
)

// ApplicationRepository defines the interface for application data access
type ApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindByIDWithUser(ctx context.Context, id string) (*models.Application, error)
	FindActiveByUser(ctx context.Context, userID uint) (*models.Application, error)
	Create(ctx context.Context, app *models.Application) error
	Update(ctx context.Context, app *models.Application) error
	SetDerivedStatus(ctx context.Context, id, status, reviewer string, at time.Time) error
	TouchDocsUpdated(ctx context.Context, id string, at time.Time) error
	ListAll(ctx context.Context) ([]models.Application, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Application, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) FindByIDWithUser(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// FindActiveByUser returns the user's application still blocking a new intake,
// or gorm.ErrRecordNotFound when there is none.
func (r *applicationRepository) FindActiveByUser(ctx context.Context, userID uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, models.ActiveApplicationStatuses).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepository) Update(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// SetDerivedStatus overwrites the review fields written by document review.
// Deliberately not a diff-and-log write; see the document review flow.
func (r *applicationRepository) SetDerivedStatus(ctx context.Context, id, status, reviewer string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": at,
			"reviewed_by": reviewer,
		}).Error
}

func (r *applicationRepository) TouchDocsUpdated(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Update("docs_updated_at", at).Error
}

func (r *applicationRepository) ListAll(ctx context.Context) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&apps).Error
	return apps, err
}
