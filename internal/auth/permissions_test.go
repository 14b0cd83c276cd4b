package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"servicesbladi_backend/internal/models"
)

func TestAuthorizeRequest(t *testing.T) {
	tests := []struct {
		name    string
		role    models.UserRole
		facts   RequestFacts
		action  Action
		allowed bool
	}{
		{
			name:    "admin can do anything",
			role:    models.UserRoleAdmin,
			facts:   RequestFacts{Status: models.RequestStatusCompleted},
			action:  ActionChangeStatus,
			allowed: true,
		},
		{
			name:    "client views own request",
			role:    models.UserRoleClient,
			facts:   RequestFacts{IsOwner: true, Status: models.RequestStatusNew},
			action:  ActionViewRequest,
			allowed: true,
		},
		{
			name:    "client cannot view foreign request",
			role:    models.UserRoleClient,
			facts:   RequestFacts{Status: models.RequestStatusNew},
			action:  ActionViewRequest,
			allowed: false,
		},
		{
			name:    "client edits own new request",
			role:    models.UserRoleClient,
			facts:   RequestFacts{IsOwner: true, Status: models.RequestStatusNew},
			action:  ActionEditRequest,
			allowed: true,
		},
		{
			name:    "client edits own pending_info request",
			role:    models.UserRoleClient,
			facts:   RequestFacts{IsOwner: true, Status: models.RequestStatusPendingInfo},
			action:  ActionEditRequest,
			allowed: true,
		},
		{
			name:    "client cannot edit once in progress",
			role:    models.UserRoleClient,
			facts:   RequestFacts{IsOwner: true, Status: models.RequestStatusInProgress},
			action:  ActionEditRequest,
			allowed: false,
		},
		{
			name:    "client cancels own active request",
			role:    models.UserRoleClient,
			facts:   RequestFacts{IsOwner: true, Status: models.RequestStatusInProgress},
			action:  ActionCancelRequest,
			allowed: true,
		},
		{
			name:    "client cannot cancel completed request",
			role:    models.UserRoleClient,
			facts:   RequestFacts{IsOwner: true, Status: models.RequestStatusCompleted},
			action:  ActionCancelRequest,
			allowed: false,
		},
		{
			name:    "client cannot change status",
			role:    models.UserRoleClient,
			facts:   RequestFacts{IsOwner: true, Status: models.RequestStatusNew},
			action:  ActionChangeStatus,
			allowed: false,
		},
		{
			name:    "expert takes unassigned request",
			role:    models.UserRoleExpert,
			facts:   RequestFacts{Unassigned: true, Status: models.RequestStatusNew},
			action:  ActionAssignExpert,
			allowed: true,
		},
		{
			name:    "expert cannot take an assigned request",
			role:    models.UserRoleExpert,
			facts:   RequestFacts{Status: models.RequestStatusInProgress},
			action:  ActionAssignExpert,
			allowed: false,
		},
		{
			name:    "assigned expert changes status",
			role:    models.UserRoleExpert,
			facts:   RequestFacts{IsAssignedExpert: true, Status: models.RequestStatusInProgress},
			action:  ActionChangeStatus,
			allowed: true,
		},
		{
			name:    "unassigned expert cannot change status",
			role:    models.UserRoleExpert,
			facts:   RequestFacts{Status: models.RequestStatusInProgress},
			action:  ActionChangeStatus,
			allowed: false,
		},
		{
			name:    "assigned expert views request",
			role:    models.UserRoleExpert,
			facts:   RequestFacts{IsAssignedExpert: true, Status: models.RequestStatusInProgress},
			action:  ActionViewRequest,
			allowed: true,
		},
		{
			name:    "assigned expert cannot cancel terminal request",
			role:    models.UserRoleExpert,
			facts:   RequestFacts{IsAssignedExpert: true, Status: models.RequestStatusCancelled},
			action:  ActionCancelRequest,
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeRequest(tt.role, tt.facts, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCanSetStatus(t *testing.T) {
	assert.NoError(t, CanSetStatus(models.UserRoleAdmin, models.RequestStatusRejected))
	assert.NoError(t, CanSetStatus(models.UserRoleExpert, models.RequestStatusCompleted))
	assert.NoError(t, CanSetStatus(models.UserRoleExpert, models.RequestStatusPendingInfo))
	assert.Error(t, CanSetStatus(models.UserRoleExpert, models.RequestStatusRejected))
	assert.Error(t, CanSetStatus(models.UserRoleExpert, models.RequestStatusCancelled))
	assert.Error(t, CanSetStatus(models.UserRoleClient, models.RequestStatusCompleted))
}
