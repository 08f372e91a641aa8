package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/zarlend/zarlend-api/internal/models"
	"github.com/zarlend/zarlend-api/internal/repository"
	"github.com/zarlend/zarlend-api/internal/services"
)

type stubApplicationRepo struct {
	repository.ApplicationRepository
	stubFindByID func(ctx context.Context, id string) (*models.Application, error)
}

func (m *stubApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	return m.stubFindByID(ctx, id)
}

type stubReviewLogRepo struct {
	repository.ReviewLogRepository
	stubListApp func(ctx context.Context, applicationID string, limit int) ([]models.ReviewLog, error)
}

func (m *stubReviewLogRepo) ListByApplication(ctx context.Context, applicationID string, limit int) ([]models.ReviewLog, error) {
	return m.stubListApp(ctx, applicationID, limit)
}

type stubUploadLogRepo struct {
	repository.UploadLogRepository
	stubListApp func(ctx context.Context, applicationID string, limit int) ([]models.UploadLog, error)
}

func (m *stubUploadLogRepo) ListByApplication(ctx context.Context, applicationID string, limit int) ([]models.UploadLog, error) {
	return m.stubListApp(ctx, applicationID, limit)
}

func auditTestRouter(repos *repository.Repositories) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAuditHandler(services.NewAuditService(repos))
	router.GET("/admin/applications/:application_id/logs", handler.Logs)
	return router
}

func TestAuditHandler_Logs_RejectsOutOfRangeLimit(t *testing.T) {
	router := auditTestRouter(&repository.Repositories{})

	for _, limit := range []string{"0", "51", "500", "-1", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/admin/applications/app-1/logs?limit="+limit, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
		assert.Contains(t, w.Body.String(), "limit must be between 1 and 50")
	}
}

func TestAuditHandler_Logs_DefaultLimitReachesBothLogs(t *testing.T) {
	var reviewLimit, uploadLimit int
	repos := &repository.Repositories{
		Application: &stubApplicationRepo{
			stubFindByID: func(ctx context.Context, id string) (*models.Application, error) {
				return &models.Application{ID: id}, nil
			},
		},
		ReviewLog: &stubReviewLogRepo{
			stubListApp: func(ctx context.Context, applicationID string, limit int) ([]models.ReviewLog, error) {
				reviewLimit = limit
				return nil, nil
			},
		},
		UploadLog: &stubUploadLogRepo{
			stubListApp: func(ctx context.Context, applicationID string, limit int) ([]models.UploadLog, error) {
				uploadLimit = limit
				return nil, nil
			},
		},
	}

	router := auditTestRouter(repos)
	req := httptest.NewRequest(http.MethodGet, "/admin/applications/app-1/logs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, reviewLimit)
	assert.Equal(t, 50, uploadLimit)
}
