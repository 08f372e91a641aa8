package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/zarlend/zarlend-api/internal/models"
)

// ApplicationFSM wraps an application with its review state machine. Reviewers
// may move an application between any two statuses (a decision can always be
// revisited), so every event is legal from every source state; the machine
// still gives each transition a named event and a single place to tighten the
// rules later.
type ApplicationFSM struct {
	app *models.Application
	fsm *fsm.FSM
}

// Transition event names
const (
	eventApprove     = "approve"
	eventDecline     = "decline"
	eventRequestInfo = "request_info"
	eventReopen      = "reopen"
)

// NewApplicationFSM creates a new application review state machine
func NewApplicationFSM(app *models.Application) *ApplicationFSM {
	anyStatus := models.ApplicationStatuses

	afsm := &ApplicationFSM{
		app: app,
	}

	afsm.fsm = fsm.NewFSM(
		app.Status,
		fsm.Events{
			{Name: eventApprove, Src: anyStatus, Dst: models.ApplicationStatusApproved},
			{Name: eventDecline, Src: anyStatus, Dst: models.ApplicationStatusDeclined},
			{Name: eventRequestInfo, Src: anyStatus, Dst: models.ApplicationStatusNeedsInfo},
			{Name: eventReopen, Src: anyStatus, Dst: models.ApplicationStatusPending},
		},
		fsm.Callbacks{},
	)

	return afsm
}

// eventForStatus maps a target status to its transition event.
func eventForStatus(status string) (string, error) {
	switch status {
	case models.ApplicationStatusApproved:
		return eventApprove, nil
	case models.ApplicationStatusDeclined:
		return eventDecline, nil
	case models.ApplicationStatusNeedsInfo:
		return eventRequestInfo, nil
	case models.ApplicationStatusPending:
		return eventReopen, nil
	default:
		return "", fmt.Errorf("unknown application status: %s", status)
	}
}

// Transition moves the application to the target status.
func (a *ApplicationFSM) Transition(ctx context.Context, status string) error {
	event, err := eventForStatus(status)
	if err != nil {
		return err
	}

	if err := a.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("cannot move application to %s: %w", status, err)
	}

	a.app.Status = a.fsm.Current()
	return nil
}

// Current returns the current state
func (a *ApplicationFSM) Current() string {
	return a.fsm.Current()
}
