package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zarlend/zarlend-api/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindBySubject(ctx context.Context, subject string) (*models.User, error)
	Upsert(ctx context.Context, subject, email string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("subject = ?", subject).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert finds the user for subject, creating it when missing and keeping the
// stored email in sync with the token claim. A concurrent create racing on the
// subject unique index is resolved by re-reading.
func (r *userRepository) Upsert(ctx context.Context, subject, email string) (*models.User, error) {
	user, err := r.FindBySubject(ctx, subject)
	if err == nil {
		if user.Email != email && email != "" {
			user.Email = email
			if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{Subject: subject, Email: email, Role: models.RoleUser}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return r.FindBySubject(ctx, subject)
		}
		return nil, err
	}
	return user, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
