package repository

import (
	"context"

	"github.com/zarlend/zarlend-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository defines the interface for document data access
type DocumentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Document, error)
	FindByApplication(ctx context.Context, applicationID string) ([]models.Document, error)
	FindByApplicationAndTypes(ctx context.Context, applicationID string, types []string) ([]models.Document, error)
	Upsert(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindByApplication(ctx context.Context, applicationID string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) FindByApplicationAndTypes(ctx context.Context, applicationID string, types []string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND type IN ?", applicationID, types).
		Find(&docs).Error
	return docs, err
}

// Upsert creates the document row or, when one exists for the same
// (application, type), replaces its storage reference and uploader. The review
// sub-state is left untouched so a re-upload does not erase a verdict silently.
// The RETURNING clause fills doc with the surviving row, so on conflict the
// caller sees the existing id and review state, not the discarded insert.
func (r *documentRepository) Upsert(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "application_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"storage_path", "uploaded_by", "updated_at"}),
		}, clause.Returning{}).
		Create(doc).Error
}

func (r *documentRepository) Update(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}
