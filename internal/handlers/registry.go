package handlers

import (
	"servicesbladi_backend/internal/services"
)

// AppHandlers groups every HTTP handler for route registration.
type AppHandlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Service      *ServiceHandler
	Request      *RequestHandler
	Appointment  *AppointmentHandler
	Message      *MessageHandler
	Notification *NotificationHandler
	Document     *DocumentHandler
}

func NewAppHandlers(container *services.ServiceContainer) *AppHandlers {
	return &AppHandlers{
		Auth:         NewAuthHandler(container.Auth),
		User:         NewUserHandler(container.User),
		Service:      NewServiceHandler(container.Catalog),
		Request:      NewRequestHandler(container.Request),
		Appointment:  NewAppointmentHandler(container.Appointment),
		Message:      NewMessageHandler(container.Message),
		Notification: NewNotificationHandler(container.Notification),
		Document:     NewDocumentHandler(container.Document),
	}
}
