package auth

import (
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/pkg/apperrors"
)

// Action is one of the lifecycle operations subject to the
// authorization matrix.
type Action string

const (
	ActionCreateRequest Action = "request:create"
	ActionEditRequest   Action = "request:edit"
	ActionCancelRequest Action = "request:cancel"
	ActionAssignExpert  Action = "request:assign"
	ActionChangeStatus  Action = "request:change_status"
	ActionViewRequest   Action = "request:view"
)

// RequestFacts are the ownership facts the matrix is evaluated over.
type RequestFacts struct {
	IsOwner          bool
	IsAssignedExpert bool
	Unassigned       bool
	Status           models.RequestStatus
}

// AuthorizeRequest is the single allow/deny decision point for every
// lifecycle operation. It is a pure function over (role, facts,
// action); callers must consult it before any state mutation.
func AuthorizeRequest(role models.UserRole, facts RequestFacts, action Action) error {
	switch role {
	case models.UserRoleAdmin:
		return nil

	case models.UserRoleClient:
		switch action {
		case ActionCreateRequest:
			return nil
		case ActionViewRequest:
			if facts.IsOwner {
				return nil
			}
		case ActionEditRequest:
			if facts.IsOwner &&
				(facts.Status == models.RequestStatusNew || facts.Status == models.RequestStatusPendingInfo) {
				return nil
			}
		case ActionCancelRequest:
			if facts.IsOwner && !facts.Status.IsTerminal() {
				return nil
			}
		}

	case models.UserRoleExpert:
		switch action {
		case ActionViewRequest:
			if facts.IsAssignedExpert {
				return nil
			}
		case ActionAssignExpert:
			// Self-assignment of an unassigned request ("take request").
			if facts.Unassigned {
				return nil
			}
		case ActionChangeStatus:
			if facts.IsAssignedExpert {
				return nil
			}
		case ActionCancelRequest:
			if facts.IsAssignedExpert && !facts.Status.IsTerminal() {
				return nil
			}
		}
	}

	return apperrors.ErrPermissionDenied("request", "You are not allowed to perform this action on this request")
}

// ExpertStatusTargets are the statuses an assigned expert may move a
// request to. Admins may set any valid status, including rejected.
var ExpertStatusTargets = map[models.RequestStatus]bool{
	models.RequestStatusInProgress:  true,
	models.RequestStatusPendingInfo: true,
	models.RequestStatusCompleted:   true,
}

// CanSetStatus checks the target status against the actor's role.
func CanSetStatus(role models.UserRole, target models.RequestStatus) error {
	switch role {
	case models.UserRoleAdmin:
		return nil
	case models.UserRoleExpert:
		if ExpertStatusTargets[target] {
			return nil
		}
	}
	return apperrors.ErrPermissionDenied("request", "You are not allowed to set this status")
}
