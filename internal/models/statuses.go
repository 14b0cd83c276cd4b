package models

type UserRole string
type RequestStatus string
type RequestPriority string
type AppointmentStatus string
type ConsultationType string
type DocumentType string
type DocumentStatus string
type NotificationType string

const (
	UserRoleClient UserRole = "client"
	UserRoleExpert UserRole = "expert"
	UserRoleAdmin  UserRole = "admin"

	RequestStatusNew         RequestStatus = "new"
	RequestStatusPendingInfo RequestStatus = "pending_info"
	RequestStatusInProgress  RequestStatus = "in_progress"
	RequestStatusCompleted   RequestStatus = "completed"
	RequestStatusCancelled   RequestStatus = "cancelled"
	RequestStatusRejected    RequestStatus = "rejected"

	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"

	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusMissed    AppointmentStatus = "missed"

	ConsultationInPerson ConsultationType = "in_person"
	ConsultationVideo    ConsultationType = "video"
	ConsultationPhone    ConsultationType = "phone"

	DocumentTypeIdentity DocumentType = "identity"
	DocumentTypeProof    DocumentType = "proof"
	DocumentTypeContract DocumentType = "contract"
	DocumentTypeInvoice  DocumentType = "invoice"
	DocumentTypeReport   DocumentType = "report"
	DocumentTypeOther    DocumentType = "other"

	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"

	NotificationRequestUpdate NotificationType = "request_update"
	NotificationAppointment   NotificationType = "appointment"
	NotificationMessage       NotificationType = "message"
	NotificationDocument      NotificationType = "document"
	NotificationSystem        NotificationType = "system"
)

// IsTerminal reports whether a request status accepts no further transitions.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusCancelled, RequestStatusRejected:
		return true
	}
	return false
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusNew, RequestStatusPendingInfo, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled, RequestStatusRejected:
		return true
	}
	return false
}

// Label returns the human wording used in notifications.
func (s RequestStatus) Label() string {
	switch s {
	case RequestStatusNew:
		return "Nouvelle"
	case RequestStatusPendingInfo:
		return "En attente d'informations"
	case RequestStatusInProgress:
		return "En cours"
	case RequestStatusCompleted:
		return "Terminée"
	case RequestStatusCancelled:
		return "Annulée"
	case RequestStatusRejected:
		return "Rejetée"
	}
	return string(s)
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCancelled,
		AppointmentStatusCompleted, AppointmentStatusMissed:
		return true
	}
	return false
}

// IsTerminal reports whether an appointment reached a final status.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusCancelled, AppointmentStatusCompleted, AppointmentStatusMissed:
		return true
	}
	return false
}
