package dto

import (
	"time"

	"servicesbladi_backend/internal/models"
)

type ScheduleAppointmentRequest struct {
	ServiceRequestID string `json:"service_request_id" validate:"omitempty,uuid"`
	ExpertID         string `json:"expert_id" validate:"omitempty,uuid"`
	ServiceID        string `json:"service_id" validate:"required,uuid"`
	DateTime         string `json:"date_time" validate:"required"` // 2006-01-02T15:04
	Duration         int    `json:"duration" validate:"omitempty,min=15,max=480"`
	ConsultationType string `json:"consultation_type" validate:"required,consultation_type"`
	Notes            string `json:"notes"`
}

type RescheduleAppointmentRequest struct {
	DateTime string `json:"date_time" validate:"required"`
	Duration int    `json:"duration" validate:"omitempty,min=15,max=480"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type AppointmentResponse struct {
	ID               string                   `json:"id"`
	DateTime         time.Time                `json:"date_time"`
	Duration         int                      `json:"duration"`
	ConsultationType models.ConsultationType  `json:"consultation_type"`
	Status           models.AppointmentStatus `json:"status"`
	Notes            string                   `json:"notes,omitempty"`
	ServiceRequestID *string                  `json:"service_request_id,omitempty"`
	Client           *ActorRef                `json:"client,omitempty"`
	Expert           *ActorRef                `json:"expert,omitempty"`
	Service          *ServiceRef              `json:"service,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}
