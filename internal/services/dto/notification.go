package dto

import (
	"time"

	"servicesbladi_backend/internal/models"
)

type NotificationResponse struct {
	ID               string                  `json:"id"`
	Type             models.NotificationType `json:"type"`
	Title            string                  `json:"title"`
	Content          string                  `json:"content"`
	IsRead           bool                    `json:"is_read"`
	ReadAt           *time.Time              `json:"read_at,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	ServiceRequestID *string                 `json:"service_request_id,omitempty"`
	AppointmentID    *string                 `json:"appointment_id,omitempty"`
	MessageID        *string                 `json:"message_id,omitempty"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unread_count"`
}
