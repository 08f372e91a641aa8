package services

import (
	"time"

	"github.com/zarlend/zarlend-api/internal/config"
	"github.com/zarlend/zarlend-api/internal/repository"
	"github.com/zarlend/zarlend-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	RateLimit   *RateLimitService
	Application *ApplicationService
	Document    *DocumentService
	Audit       *AuditService
	Metrics     *MetricsService
	Export      *ExportService
}

// NewServices creates all service instances. The two review engines share one
// lock set so their writes to the same application serialize.
func NewServices(repos *repository.Repositories, store *storage.LocalStorage, cfg *config.Config) *Services {
	locks := newKeyedLocks()
	rateLimitSvc := NewRateLimitService(repos.RateLimit)

	applyWindow := time.Duration(cfg.ApplyRateWindowMinutes) * time.Minute
	uploadWindow := time.Duration(cfg.UploadRateWindowMinutes) * time.Minute

	return &Services{
		RateLimit:   rateLimitSvc,
		Application: NewApplicationService(repos, rateLimitSvc, locks, applyWindow, cfg.ApplyRateMax),
		Document:    NewDocumentService(repos, store, rateLimitSvc, locks, uploadWindow, cfg.UploadRateMax, cfg.MaxUploadBytes),
		Audit:       NewAuditService(repos),
		Metrics:     NewMetricsService(repos),
		Export:      NewExportService(repos),
	}
}
