package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"servicesbladi_backend/internal/email"
	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

// EventKind names a system event the dispatcher knows how to phrase.
type EventKind string

const (
	EventRequestCreated         EventKind = "request_created"
	EventExpertTaken            EventKind = "expert_taken"
	EventExpertAssignedClient   EventKind = "expert_assigned_client"
	EventExpertAssignment       EventKind = "expert_assignment"
	EventStatusChanged          EventKind = "status_changed"
	EventRequestUpdated         EventKind = "request_updated"
	EventRequestCancelled       EventKind = "request_cancelled"
	EventNewMessage             EventKind = "new_message"
	EventAppointmentScheduled   EventKind = "appointment_scheduled"
	EventAppointmentRescheduled EventKind = "appointment_rescheduled"
	EventAppointmentCancelled   EventKind = "appointment_cancelled"
	EventDocumentVerified       EventKind = "document_verified"
	EventDocumentRejected       EventKind = "document_rejected"
)

// Event is one fan-out unit: a target user, an event kind and the
// positional arguments its template consumes.
type Event struct {
	Kind          EventKind
	UserID        string
	Args          []interface{}
	RequestID     *string
	AppointmentID *string
	MessageID     *string
}

type eventTemplate struct {
	Type    models.NotificationType
	Title   string
	Content string // fmt verbs filled from Event.Args
}

// eventTemplates keeps the role-specific phrasing data-driven instead
// of rebuilt at every call site.
var eventTemplates = map[EventKind]eventTemplate{
	EventRequestCreated: {
		Type:    models.NotificationRequestUpdate,
		Title:   "Nouvelle demande",
		Content: `Une nouvelle demande "%s" a été créée par %s.`,
	},
	EventExpertTaken: {
		Type:    models.NotificationRequestUpdate,
		Title:   "Expert assigné",
		Content: `Un expert (%s) a pris en charge votre demande "%s".`,
	},
	EventExpertAssignedClient: {
		Type:    models.NotificationRequestUpdate,
		Title:   "Expert assigné",
		Content: `Un expert a été assigné à votre demande "%s".`,
	},
	EventExpertAssignment: {
		Type:    models.NotificationRequestUpdate,
		Title:   "Nouvelle assignation",
		Content: `La demande "%s" vous a été assignée par %s.`,
	},
	EventStatusChanged: {
		Type:    models.NotificationRequestUpdate,
		Title:   "Statut de la demande mis à jour",
		Content: `Le statut de la demande "%s" a été mis à jour à "%s".`,
	},
	EventRequestUpdated: {
		Type:    models.NotificationRequestUpdate,
		Title:   "Demande mise à jour",
		Content: `La demande "%s" a été modifiée par %s.`,
	},
	EventRequestCancelled: {
		Type:    models.NotificationRequestUpdate,
		Title:   "Demande annulée",
		Content: `La demande "%s" a été annulée par %s. Raison : %s`,
	},
	EventNewMessage: {
		Type:    models.NotificationMessage,
		Title:   "Nouveau message",
		Content: `Vous avez reçu un nouveau message de %s.`,
	},
	EventAppointmentScheduled: {
		Type:    models.NotificationAppointment,
		Title:   "Nouveau rendez-vous",
		Content: `Un rendez-vous a été planifié par %s le %s.`,
	},
	EventAppointmentRescheduled: {
		Type:    models.NotificationAppointment,
		Title:   "Rendez-vous reporté",
		Content: `Le rendez-vous a été reporté au %s.`,
	},
	EventAppointmentCancelled: {
		Type:    models.NotificationAppointment,
		Title:   "Rendez-vous annulé",
		Content: `Le rendez-vous du %s a été annulé par %s.`,
	},
	EventDocumentVerified: {
		Type:    models.NotificationDocument,
		Title:   "Document vérifié",
		Content: `Votre document "%s" a été vérifié.`,
	},
	EventDocumentRejected: {
		Type:    models.NotificationDocument,
		Title:   "Document refusé",
		Content: `Votre document "%s" a été refusé. Raison : %s`,
	},
}

type NotificationService interface {
	// Dispatch renders the event template, persists the notification and
	// best-effort forwards it to the email transport. Transport failures
	// are logged, never surfaced.
	Dispatch(event Event) error

	// Notify persists a free-form notification (system events, admin
	// broadcast). No dedup: every call records a distinct row.
	Notify(userID string, notifType models.NotificationType, title, content string) error

	GetUserNotifications(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) error
	UnreadCount(userID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	emailProvider    email.Provider
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	emailProvider email.Provider,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		emailProvider:    emailProvider,
	}
}

func (s *notificationService) Dispatch(event Event) error {
	tmpl, ok := eventTemplates[event.Kind]
	if !ok {
		return apperrors.ErrInvalidOperation("notification", fmt.Sprintf("unknown event kind %q", event.Kind))
	}

	content := fmt.Sprintf(tmpl.Content, event.Args...)

	data, _ := json.Marshal(map[string]interface{}{"event": string(event.Kind)})

	notification := &models.Notification{
		UserID:           event.UserID,
		Type:             tmpl.Type,
		Title:            tmpl.Title,
		Content:          content,
		Data:             datatypes.JSON(data),
		ServiceRequestID: event.RequestID,
		AppointmentID:    event.AppointmentID,
		MessageID:        event.MessageID,
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "notification", "Failed to persist notification", 500)
	}

	s.deliver(event.UserID, tmpl.Title, content)
	return nil
}

func (s *notificationService) Notify(userID string, notifType models.NotificationType, title, content string) error {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Content: content,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "notification", "Failed to persist notification", 500)
	}

	s.deliver(userID, title, content)
	return nil
}

// deliver hands the notification to the outbound transport. Delivery is
// fire-and-forget: a failing SMTP server must never fail the operation
// that triggered the notification.
func (s *notificationService) deliver(userID, title, content string) {
	if s.emailProvider == nil {
		return
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		logger.Warn("notification delivery skipped, user lookup failed", "user_id", userID, "error", err)
		return
	}

	if err := s.emailProvider.Send(user.Email, title, content); err != nil {
		logger.Warn("notification email delivery failed", "user_id", userID, "error", err)
	}
}

func (s *notificationService) GetUserNotifications(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.FindUserNotifications(userID, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	unread, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, buildNotificationResponse(&notifications[i]))
	}

	return &dto.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

func (s *notificationService) MarkAsRead(userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(userID, notificationID); err != nil {
		if err == repositories.ErrNotificationNotFound {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) UnreadCount(userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func buildNotificationResponse(n *models.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:               n.ID,
		Type:             n.Type,
		Title:            n.Title,
		Content:          n.Content,
		IsRead:           n.IsRead,
		ReadAt:           n.ReadAt,
		CreatedAt:        n.CreatedAt,
		ServiceRequestID: n.ServiceRequestID,
		AppointmentID:    n.AppointmentID,
		MessageID:        n.MessageID,
	}
}
