package dto

import (
	"time"

	"servicesbladi_backend/internal/models"
)

type CreateRequestRequest struct {
	ServiceID   string `json:"service_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DesiredDate string `json:"desired_date" validate:"omitempty"` // 2006-01-02
	IsUrgent    bool   `json:"is_urgent"`

	// Admin-only: file the request on behalf of this client.
	OnBehalfOfClientID string `json:"on_behalf_of_client_id" validate:"omitempty,uuid"`
}

type UpdateRequestRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DesiredDate string `json:"desired_date" validate:"omitempty"`
}

type AssignExpertRequest struct {
	ExpertID string `json:"expert_id" validate:"required,uuid"`
	Notes    string `json:"notes"`
}

type ChangeStatusRequest struct {
	Status  string `json:"status" validate:"required,request_status"`
	Comment string `json:"comment"`
}

type CancelRequestRequest struct {
	Reason string `json:"reason"`
}

type RequestCriteria struct {
	Status   string `form:"status" validate:"omitempty,request_status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type RequestResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      models.RequestStatus   `json:"status"`
	Priority    models.RequestPriority `json:"priority"`
	IsUrgent    bool                   `json:"is_urgent"`
	DesiredDate *time.Time             `json:"desired_date,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Client      *ActorRef              `json:"client,omitempty"`
	Expert      *ActorRef              `json:"expert,omitempty"`
	Service     *ServiceRef            `json:"service,omitempty"`
}

type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ActorRef is the compact user reference embedded in responses.
type ActorRef struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Role models.UserRole `json:"role"`
}

type ServiceRef struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
}
