package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zarlend/zarlend-api/internal/models"
	"github.com/zarlend/zarlend-api/internal/repository"
	"github.com/zarlend/zarlend-api/pkg/logger"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	repository.UserRepository
	mockFindBySubject func(ctx context.Context, subject string) (*models.User, error)
	mockUpsert        func(ctx context.Context, subject, email string) (*models.User, error)
}

func (m *mockUserRepo) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	return m.mockFindBySubject(ctx, subject)
}

func (m *mockUserRepo) Upsert(ctx context.Context, subject, email string) (*models.User, error) {
	return m.mockUpsert(ctx, subject, email)
}

type mockApplicationRepo struct {
	repository.ApplicationRepository
	mockFindByID         func(ctx context.Context, id string) (*models.Application, error)
	mockFindActiveByUser func(ctx context.Context, userID uint) (*models.Application, error)
	mockCreate           func(ctx context.Context, app *models.Application) error
	mockUpdate           func(ctx context.Context, app *models.Application) error
	mockSetDerived       func(ctx context.Context, id, status, reviewer string, at time.Time) error
	mockTouchDocs        func(ctx context.Context, id string, at time.Time) error
	mockListByUser       func(ctx context.Context, userID uint, limit int) ([]models.Application, error)
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockApplicationRepo) FindActiveByUser(ctx context.Context, userID uint) (*models.Application, error) {
	return m.mockFindActiveByUser(ctx, userID)
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	return m.mockCreate(ctx, app)
}

func (m *mockApplicationRepo) Update(ctx context.Context, app *models.Application) error {
	return m.mockUpdate(ctx, app)
}

func (m *mockApplicationRepo) SetDerivedStatus(ctx context.Context, id, status, reviewer string, at time.Time) error {
	return m.mockSetDerived(ctx, id, status, reviewer, at)
}

func (m *mockApplicationRepo) TouchDocsUpdated(ctx context.Context, id string, at time.Time) error {
	if m.mockTouchDocs != nil {
		return m.mockTouchDocs(ctx, id, at)
	}
	return nil
}

func (m *mockApplicationRepo) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Application, error) {
	return m.mockListByUser(ctx, userID, limit)
}

type mockReviewLogRepo struct {
	repository.ReviewLogRepository
	mockCreate  func(ctx context.Context, entry *models.ReviewLog) error
	mockListApp func(ctx context.Context, applicationID string, limit int) ([]models.ReviewLog, error)
}

func (m *mockReviewLogRepo) Create(ctx context.Context, entry *models.ReviewLog) error {
	return m.mockCreate(ctx, entry)
}

func (m *mockReviewLogRepo) ListByApplication(ctx context.Context, applicationID string, limit int) ([]models.ReviewLog, error) {
	return m.mockListApp(ctx, applicationID, limit)
}

// validNationalID passes the 13-digit Luhn check.
const validNationalID = "8001015009087"

func validIntake() IntakeInput {
	return IntakeInput{
		FullName:        "Thandi Nkosi",
		NationalID:      validNationalID,
		AmountRequested: 2500,
		RepayDays:       30,
		AgreeTerms:      true,
	}
}

func allowingRateRepo() *mockRateLimitRepo {
	return &mockRateLimitRepo{
		mockCountSince: func(ctx context.Context, subject, action string, since time.Time) (int64, error) {
			return 0, nil
		},
	}
}

func newApplicationServiceForTest(repos *repository.Repositories, rateRepo *mockRateLimitRepo) *ApplicationService {
	return NewApplicationService(repos, NewRateLimitService(rateRepo), newKeyedLocks(), time.Hour, 3)
}

func TestIntakeInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *IntakeInput)
		wantErr string
	}{
		{
			name:   "valid input",
			mutate: func(in *IntakeInput) {},
		},
		{
			name:    "terms not accepted",
			mutate:  func(in *IntakeInput) { in.AgreeTerms = false },
			wantErr: "accept the terms",
		},
		{
			name:    "name too short",
			mutate:  func(in *IntakeInput) { in.FullName = "T" },
			wantErr: "full name",
		},
		{
			name:    "national id wrong length",
			mutate:  func(in *IntakeInput) { in.NationalID = "80010150090" },
			wantErr: "national id",
		},
		{
			name:    "national id fails checksum",
			mutate:  func(in *IntakeInput) { in.NationalID = "8001015009086" },
			wantErr: "national id",
		},
		{
			name:    "amount below minimum",
			mutate:  func(in *IntakeInput) { in.AmountRequested = 499 },
			wantErr: "minimum loan amount",
		},
		{
			name:    "amount above maximum",
			mutate:  func(in *IntakeInput) { in.AmountRequested = 50001 },
			wantErr: "maximum loan amount",
		},
		{
			name:    "repay days out of range",
			mutate:  func(in *IntakeInput) { in.RepayDays = 32 },
			wantErr: "repayment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIntake()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestApplicationService_Submit_Success(t *testing.T) {
	logger.Setup("test")

	var created *models.Application
	recorded := 0

	mockUsers := &mockUserRepo{
		mockUpsert: func(ctx context.Context, subject, email string) (*models.User, error) {
			return &models.User{ID: 7, Subject: subject, Email: email}, nil
		},
	}
	mockApps := &mockApplicationRepo{
		mockFindActiveByUser: func(ctx context.Context, userID uint) (*models.Application, error) {
			return nil, gorm.ErrRecordNotFound
		},
		mockCreate: func(ctx context.Context, app *models.Application) error {
			app.ID = "app-1"
			created = app
			return nil
		},
	}
	rateRepo := allowingRateRepo()
	rateRepo.mockCreate = func(ctx context.Context, subject, action string) error {
		recorded++
		assert.Equal(t, models.RateActionApply, action)
		return nil
	}

	service := newApplicationServiceForTest(&repository.Repositories{
		User:        mockUsers,
		Application: mockApps,
	}, rateRepo)

	app, err := service.Submit(context.Background(), "auth0|abc", "thandi@example.com", validIntake())
	assert.NoError(t, err)
	assert.NotNil(t, app)
	assert.Equal(t, created, app)
	assert.Equal(t, uint(7), app.UserID)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Equal(t, 1, recorded, "quota should be consumed exactly once after success")
}

func TestApplicationService_Submit_ActiveApplicationConflict(t *testing.T) {
	logger.Setup("test")

	mockUsers := &mockUserRepo{
		mockUpsert: func(ctx context.Context, subject, email string) (*models.User, error) {
			return &models.User{ID: 7, Subject: subject}, nil
		},
	}
	mockApps := &mockApplicationRepo{
		mockFindActiveByUser: func(ctx context.Context, userID uint) (*models.Application, error) {
			return &models.Application{ID: "existing-1", Status: models.ApplicationStatusNeedsInfo}, nil
		},
		mockCreate: func(ctx context.Context, app *models.Application) error {
			t.Fatal("Create must not be called when an active application exists")
			return nil
		},
	}

	service := newApplicationServiceForTest(&repository.Repositories{
		User:        mockUsers,
		Application: mockApps,
	}, allowingRateRepo())

	app, err := service.Submit(context.Background(), "auth0|abc", "thandi@example.com", validIntake())
	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrConflict)

	var active *ActiveApplicationError
	assert.ErrorAs(t, err, &active)
	assert.Equal(t, "existing-1", active.ApplicationID)
	assert.Equal(t, models.ApplicationStatusNeedsInfo, active.Status)
}

func TestApplicationService_Submit_RateLimited(t *testing.T) {
	logger.Setup("test")

	rateRepo := &mockRateLimitRepo{
		mockCountSince: func(ctx context.Context, subject, action string, since time.Time) (int64, error) {
			return 3, nil
		},
	}
	service := newApplicationServiceForTest(&repository.Repositories{
		User: &mockUserRepo{
			mockUpsert: func(ctx context.Context, subject, email string) (*models.User, error) {
				t.Fatal("Upsert must not be called when rate limited")
				return nil, nil
			},
		},
	}, rateRepo)

	app, err := service.Submit(context.Background(), "auth0|abc", "thandi@example.com", validIntake())
	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestApplicationService_Review_AppliesDecisionAndLogsOnce(t *testing.T) {
	logger.Setup("test")

	notes := "income verified"
	current := &models.Application{ID: "app-1", Status: models.ApplicationStatusPending}
	updates := 0
	var logged *models.ReviewLog

	mockApps := &mockApplicationRepo{
		mockFindByID: func(ctx context.Context, id string) (*models.Application, error) {
			return current, nil
		},
		mockUpdate: func(ctx context.Context, app *models.Application) error {
			updates++
			return nil
		},
	}
	mockLogs := &mockReviewLogRepo{
		mockCreate: func(ctx context.Context, entry *models.ReviewLog) error {
			logged = entry
			return nil
		},
	}

	service := newApplicationServiceForTest(&repository.Repositories{
		Application: mockApps,
		ReviewLog:   mockLogs,
	}, allowingRateRepo())

	status := models.ApplicationStatusApproved
	app, err := service.Review(context.Background(), "admin-1", "app-1", &status, &notes, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, updates)
	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	assert.Equal(t, &notes, app.AdminNotes)
	assert.NotNil(t, app.DecisionAt)
	assert.Equal(t, "admin-1", *app.DecidedBy)
	assert.NotNil(t, app.ReviewedAt)
	assert.Equal(t, "admin-1", *app.ReviewedBy)

	assert.NotNil(t, logged, "a change must write exactly one review log entry")
	assert.Equal(t, models.ApplicationStatusPending, logged.OldStatus)
	assert.Equal(t, models.ApplicationStatusApproved, logged.NewStatus)
	assert.Nil(t, logged.OldNotes)
	assert.Equal(t, &notes, logged.NewNotes)
	assert.Equal(t, "admin-1", logged.ActorSubject)
}

func TestApplicationService_Review_NoOpWritesNothing(t *testing.T) {
	logger.Setup("test")

	notes := "already noted"
	current := &models.Application{
		ID:         "app-1",
		Status:     models.ApplicationStatusApproved,
		AdminNotes: &notes,
	}

	mockApps := &mockApplicationRepo{
		mockFindByID: func(ctx context.Context, id string) (*models.Application, error) {
			return current, nil
		},
		mockUpdate: func(ctx context.Context, app *models.Application) error {
			t.Fatal("Update must not be called for an identical submission")
			return nil
		},
	}
	mockLogs := &mockReviewLogRepo{
		mockCreate: func(ctx context.Context, entry *models.ReviewLog) error {
			t.Fatal("no review log entry may be written for a no-op")
			return nil
		},
	}

	service := newApplicationServiceForTest(&repository.Repositories{
		Application: mockApps,
		ReviewLog:   mockLogs,
	}, allowingRateRepo())

	status := models.ApplicationStatusApproved
	sameNotes := "already noted"
	app, err := service.Review(context.Background(), "admin-1", "app-1", &status, &sameNotes, nil)
	assert.NoError(t, err)
	assert.Equal(t, current, app)
	assert.Nil(t, app.DecisionAt, "a no-op must not stamp a decision")
}

func TestApplicationService_Review_EmptyNotesEqualNil(t *testing.T) {
	logger.Setup("test")

	current := &models.Application{ID: "app-1", Status: models.ApplicationStatusPending}
	mockApps := &mockApplicationRepo{
		mockFindByID: func(ctx context.Context, id string) (*models.Application, error) {
			return current, nil
		},
		mockUpdate: func(ctx context.Context, app *models.Application) error {
			t.Fatal("clearing absent notes with an empty string is not a change")
			return nil
		},
	}

	service := newApplicationServiceForTest(&repository.Repositories{
		Application: mockApps,
	}, allowingRateRepo())

	empty := ""
	_, err := service.Review(context.Background(), "admin-1", "app-1", nil, &empty, nil)
	assert.NoError(t, err)
}

func TestApplicationService_Review_InvalidStatus(t *testing.T) {
	logger.Setup("test")

	service := newApplicationServiceForTest(&repository.Repositories{}, allowingRateRepo())

	bad := "SHREDDED"
	app, err := service.Review(context.Background(), "admin-1", "app-1", &bad, nil, nil)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApplicationService_Review_NotFound(t *testing.T) {
	logger.Setup("test")

	mockApps := &mockApplicationRepo{
		mockFindByID: func(ctx context.Context, id string) (*models.Application, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	service := newApplicationServiceForTest(&repository.Repositories{
		Application: mockApps,
	}, allowingRateRepo())

	app, err := service.Review(context.Background(), "admin-1", "missing", nil, nil, nil)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplicationService_History_NoUser(t *testing.T) {
	logger.Setup("test")

	mockUsers := &mockUserRepo{
		mockFindBySubject: func(ctx context.Context, subject string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	service := newApplicationServiceForTest(&repository.Repositories{
		User: mockUsers,
	}, allowingRateRepo())

	apps, err := service.History(context.Background(), "auth0|new", 3)
	assert.NoError(t, err, "a subject that never applied is not an error")
	assert.Empty(t, apps)
}

func TestApplicationService_Submit_FailClosedOnCountError(t *testing.T) {
	logger.Setup("test")

	rateRepo := &mockRateLimitRepo{
		mockCountSince: func(ctx context.Context, subject, action string, since time.Time) (int64, error) {
			return 0, errors.New("store down")
		},
	}
	service := newApplicationServiceForTest(&repository.Repositories{}, rateRepo)

	app, err := service.Submit(context.Background(), "auth0|abc", "thandi@example.com", validIntake())
	assert.Nil(t, app)
	assert.Error(t, err)
}
