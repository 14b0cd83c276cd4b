package dto

import (
	"time"

	"servicesbladi_backend/internal/models"
)

// UploadDocumentRequest carries the multipart form metadata; the file
// itself travels separately.
type UploadDocumentRequest struct {
	ServiceRequestID string `form:"service_request_id" validate:"omitempty,uuid"`
	AppointmentID    string `form:"appointment_id" validate:"omitempty,uuid"`
	Type             string `form:"type" validate:"omitempty,oneof=identity proof contract invoice report other"`
	IsOfficial       bool   `form:"is_official"`
	ReferenceNumber  string `form:"reference_number"`
}

type RejectDocumentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type DocumentResponse struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Type             models.DocumentType   `json:"type"`
	Status           models.DocumentStatus `json:"status"`
	IsOfficial       bool                  `json:"is_official"`
	ReferenceNumber  string                `json:"reference_number,omitempty"`
	URL              string                `json:"url"`
	MimeType         string                `json:"mime_type"`
	SizeKB           int64                 `json:"size_kb"`
	RejectionReason  string                `json:"rejection_reason,omitempty"`
	ServiceRequestID *string               `json:"service_request_id,omitempty"`
	AppointmentID    *string               `json:"appointment_id,omitempty"`
	UploadedBy       *ActorRef             `json:"uploaded_by,omitempty"`
	UploadedAt       time.Time             `json:"uploaded_at"`
}
