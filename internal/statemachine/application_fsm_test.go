package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zarlend/zarlend-api/internal/models"
)

func TestApplicationFSM_Transition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{name: "approve pending", from: models.ApplicationStatusPending, to: models.ApplicationStatusApproved},
		{name: "decline pending", from: models.ApplicationStatusPending, to: models.ApplicationStatusDeclined},
		{name: "request info", from: models.ApplicationStatusPending, to: models.ApplicationStatusNeedsInfo},
		{name: "reopen declined", from: models.ApplicationStatusDeclined, to: models.ApplicationStatusPending},
		{name: "revisit approval", from: models.ApplicationStatusApproved, to: models.ApplicationStatusDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &models.Application{Status: tt.from}
			afsm := NewApplicationFSM(app)

			err := afsm.Transition(context.Background(), tt.to)
			assert.NoError(t, err)
			assert.Equal(t, tt.to, app.Status)
			assert.Equal(t, tt.to, afsm.Current())
		})
	}
}

func TestApplicationFSM_UnknownStatus(t *testing.T) {
	app := &models.Application{Status: models.ApplicationStatusPending}
	afsm := NewApplicationFSM(app)

	err := afsm.Transition(context.Background(), "SHREDDED")
	assert.Error(t, err)
	assert.Equal(t, models.ApplicationStatusPending, app.Status, "a failed transition must not change the status")
}
