package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zarlend/zarlend-api/internal/models"
	"github.com/zarlend/zarlend-api/internal/repository"
	"github.com/zarlend/zarlend-api/internal/statemachine"
	"github.com/zarlend/zarlend-api/pkg/logger"
	"gorm.io/gorm"
)

// ApplicationService owns intake and the direct (staff) review path. Status
// writes from here and from DocumentService share the same per-application
// lock, so the two engines never interleave on one row.
type ApplicationService struct {
	repos       *repository.Repositories
	rates       *RateLimitService
	locks       *keyedLocks
	applyWindow time.Duration
	applyMax    int
}

func NewApplicationService(repos *repository.Repositories, rates *RateLimitService, locks *keyedLocks, applyWindow time.Duration, applyMax int) *ApplicationService {
	return &ApplicationService{
		repos:       repos,
		rates:       rates,
		locks:       locks,
		applyWindow: applyWindow,
		applyMax:    applyMax,
	}
}

// IntakeInput is the applicant-supplied portion of a new application.
type IntakeInput struct {
	FullName        string `json:"full_name"`
	NationalID      string `json:"national_id"`
	AmountRequested int64  `json:"amount_requested"`
	RepayDays       int    `json:"repay_days"`
	AgreeTerms      bool   `json:"agree_terms"`
}

// Validate rejects malformed intake before any side effect.
func (in *IntakeInput) Validate() error {
	if !in.AgreeTerms {
		return validationError("you must accept the terms to continue")
	}
	if len(strings.TrimSpace(in.FullName)) < 2 {
		return validationError("full name is required")
	}
	if !models.ValidNationalID(strings.TrimSpace(in.NationalID)) {
		return validationError("national id number is invalid")
	}
	if in.AmountRequested < models.MinAmountRequested {
		return validationError("minimum loan amount is R%d", models.MinAmountRequested)
	}
	if in.AmountRequested > models.MaxAmountRequested {
		return validationError("maximum loan amount is R%d", models.MaxAmountRequested)
	}
	if in.RepayDays < models.MinRepayDays || in.RepayDays > models.MaxRepayDays {
		return validationError("repayment must be between %d and %d days", models.MinRepayDays, models.MaxRepayDays)
	}
	return nil
}

// Submit runs the intake flow: validate, rate-limit, upsert the user, enforce
// the single-active-application rule, create, then consume quota. The
// per-subject lock makes the check-then-create atomic within this process.
func (s *ApplicationService) Submit(ctx context.Context, subject, email string, in IntakeInput) (*models.Application, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	allowed, err := s.rates.Allow(ctx, subject, models.RateActionApply, s.applyWindow, s.applyMax)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: too many applications, please try again later", ErrRateLimited)
	}

	unlock := s.locks.Lock("user:" + subject)
	defer unlock()

	user, err := s.repos.User.Upsert(ctx, subject, email)
	if err != nil {
		return nil, err
	}

	existing, err := s.repos.Application.FindActiveByUser(ctx, user.ID)
	if err == nil {
		return nil, &ActiveApplicationError{ApplicationID: existing.ID, Status: existing.Status}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	app := &models.Application{
		UserID:          user.ID,
		FullName:        strings.TrimSpace(in.FullName),
		NationalID:      strings.TrimSpace(in.NationalID),
		AmountRequested: in.AmountRequested,
		RepayDays:       in.RepayDays,
		Status:          models.ApplicationStatusPending,
	}
	if err := s.repos.Application.Create(ctx, app); err != nil {
		return nil, err
	}

	// Quota is consumed only after the side effect succeeded. A failed record
	// must not roll back an accepted intake.
	if err := s.rates.Record(ctx, subject, models.RateActionApply); err != nil {
		logger.Warn("failed to record rate limit event", "subject", subject, "action", models.RateActionApply, "error", err)
	}

	return app, nil
}

// Review applies a staff decision directly to the application. Only a real
// change in status or notes writes anything; an identical submission is a
// no-op that leaves the audit trail untouched. On change, decision and review
// stamps are set unconditionally and exactly one ReviewLog entry is written,
// all inside one transaction.
func (s *ApplicationService) Review(ctx context.Context, actor, applicationID string, newStatus, adminNotes, clientMessage *string) (*models.Application, error) {
	if newStatus != nil && !models.ValidApplicationStatus(*newStatus) {
		return nil, validationError("invalid status: %s", *newStatus)
	}

	unlock := s.locks.Lock("app:" + applicationID)
	defer unlock()

	var result *models.Application
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		current, err := tx.Application.FindByID(ctx, applicationID)
		if err != nil {
			return translateNotFound(err)
		}

		currentNotes := ""
		if current.AdminNotes != nil {
			currentNotes = *current.AdminNotes
		}
		nextNotes := currentNotes
		if adminNotes != nil {
			nextNotes = *adminNotes
		}

		statusChanged := newStatus != nil && *newStatus != current.Status
		notesChanged := adminNotes != nil && nextNotes != currentNotes

		if !statusChanged && !notesChanged {
			result = current
			return nil
		}

		oldStatus := current.Status
		oldNotes := current.AdminNotes

		if statusChanged {
			afsm := statemachine.NewApplicationFSM(current)
			if err := afsm.Transition(ctx, *newStatus); err != nil {
				return validationError("%s", err.Error())
			}
		}
		if adminNotes != nil {
			current.AdminNotes = adminNotes
		}
		if clientMessage != nil {
			current.ClientMessage = clientMessage
		}

		now := time.Now()
		current.DecisionAt = &now
		current.DecidedBy = &actor
		current.ReviewedAt = &now
		current.ReviewedBy = &actor

		if err := tx.Application.Update(ctx, current); err != nil {
			return err
		}

		entry := &models.ReviewLog{
			ApplicationID: current.ID,
			ActorSubject:  actor,
			OldStatus:     oldStatus,
			NewStatus:     current.Status,
			OldNotes:      oldNotes,
			NewNotes:      current.AdminNotes,
		}
		if err := tx.ReviewLog.Create(ctx, entry); err != nil {
			return err
		}

		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindByIDWithUser gets an application with its applicant preloaded
func (s *ApplicationService) FindByIDWithUser(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repos.Application.FindByIDWithUser(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return app, nil
}

// ListAll returns every application, newest first, for the admin queue
func (s *ApplicationService) ListAll(ctx context.Context) ([]models.Application, error) {
	return s.repos.Application.ListAll(ctx)
}

// History returns the caller's most recent applications, newest first. A
// subject that never applied gets an empty history, not an error.
func (s *ApplicationService) History(ctx context.Context, subject string, limit int) ([]models.Application, error) {
	user, err := s.repos.User.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.repos.Application.ListByUser(ctx, user.ID, limit)
}

// translateNotFound converts the store's missing-row error into the service
// level kind so handlers never see gorm.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
