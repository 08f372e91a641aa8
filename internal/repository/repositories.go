package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User        UserRepository
	Application ApplicationRepository
	Document    DocumentRepository
	ReviewLog   ReviewLogRepository
	UploadLog   UploadLogRepository
	RateLimit   RateLimitRepository
	Metrics     MetricsRepository

	db *gorm.DB
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Application: NewApplicationRepository(db),
		Document:    NewDocumentRepository(db),
		ReviewLog:   NewReviewLogRepository(db),
		UploadLog:   NewUploadLogRepository(db),
		RateLimit:   NewRateLimitRepository(db),
		Metrics:     NewMetricsRepository(db),
		db:          db,
	}
}

// Transaction runs fn with a set of repositories bound to one database
// transaction. Repositories built by hand (unit tests) carry no db handle;
// fn then runs against the originals without a transaction.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
