package services

import (
	"gorm.io/gorm"

	"servicesbladi_backend/internal/email"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/storage"
)

// ServiceContainer wires every service over a shared set of
// repositories. Handlers receive it fully constructed.
type ServiceContainer struct {
	Auth         AuthService
	User         UserService
	Catalog      CatalogService
	Request      RequestService
	Appointment  AppointmentService
	Message      MessageService
	Notification NotificationService
	Document     DocumentService
}

func NewServiceContainer(
	db *gorm.DB,
	store storage.Storage,
	emailProvider email.Provider,
	realtime RealtimePublisher,
) *ServiceContainer {
	userRepo := repositories.NewUserRepository(db)
	serviceRepo := repositories.NewServiceRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)

	notification := NewNotificationService(notificationRepo, userRepo, emailProvider)

	return &ServiceContainer{
		Auth:         NewAuthService(userRepo),
		User:         NewUserService(userRepo),
		Catalog:      NewCatalogService(serviceRepo, userRepo),
		Request:      NewRequestService(requestRepo, serviceRepo, userRepo, messageRepo, notification),
		Appointment:  NewAppointmentService(appointmentRepo, requestRepo, serviceRepo, userRepo, notification),
		Message:      NewMessageService(messageRepo, requestRepo, userRepo, notification, realtime),
		Notification: notification,
		Document:     NewDocumentService(documentRepo, requestRepo, userRepo, store, notification),
	}
}
