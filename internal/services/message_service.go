package services

import (
	"strings"

	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

// RealtimePublisher pushes an event to a user's live websocket
// sessions. A nil publisher disables realtime delivery.
type RealtimePublisher interface {
	PublishToUser(userID string, event string, payload interface{})
}

type MessageService interface {
	// Send delivers a direct message. When ServiceRequestID is set the
	// message belongs to that request's conversation and both parties
	// must be participants of the request.
	Send(senderID string, req dto.SendMessageRequest) (*dto.MessageResponse, error)

	// GetConversation returns the full exchange with another user and
	// marks every message addressed to userID as read in one batch.
	GetConversation(userID, otherID string, limit int) (*dto.ConversationResponse, error)

	// ListConversations aggregates the user's messages into one summary
	// per contact, newest conversation first.
	ListConversations(userID string) ([]dto.ConversationSummary, error)

	GetRequestMessages(userID string, requestID string) ([]dto.MessageResponse, error)
	UnreadCount(userID string) (int64, error)
}

type messageService struct {
	messageRepo  repositories.MessageRepository
	requestRepo  repositories.RequestRepository
	userRepo     repositories.UserRepository
	notification NotificationService
	realtime     RealtimePublisher
}

func NewMessageService(
	messageRepo repositories.MessageRepository,
	requestRepo repositories.RequestRepository,
	userRepo repositories.UserRepository,
	notification NotificationService,
	realtime RealtimePublisher,
) MessageService {
	return &messageService{
		messageRepo:  messageRepo,
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		notification: notification,
		realtime:     realtime,
	}
}

func (s *messageService) Send(senderID string, req dto.SendMessageRequest) (*dto.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if req.RecipientID == senderID {
		return nil, apperrors.ErrInvalidOperation("message", "Cannot send a message to yourself")
	}

	sender, err := s.userRepo.FindByID(senderID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	recipient, err := s.userRepo.FindByID(req.RecipientID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !recipient.IsActive {
		return nil, apperrors.ErrInvalidOperation("message", "Recipient account is disabled")
	}

	var requestID *string
	if req.ServiceRequestID != "" {
		if err := s.authorizeRequestMessage(sender, recipient, req.ServiceRequestID); err != nil {
			return nil, err
		}
		id := req.ServiceRequestID
		requestID = &id
	}

	message := &models.Message{
		SenderID:         senderID,
		RecipientID:      req.RecipientID,
		ServiceRequestID: requestID,
		Content:          content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, apperrors.InternalError(err)
	}

	response := buildMessageResponse(message)
	response.SenderName = sender.FullName()

	if err := s.notification.Dispatch(Event{
		Kind:      EventNewMessage,
		UserID:    req.RecipientID,
		Args:      []interface{}{sender.FullName()},
		RequestID: requestID,
		MessageID: &message.ID,
	}); err != nil {
		logger.Warn("message notification failed", "message_id", message.ID, "error", err)
	}

	if s.realtime != nil {
		s.realtime.PublishToUser(req.RecipientID, "message", response)
	}

	return &response, nil
}

// authorizeRequestMessage enforces the request-scoped conversation
// rules: both parties must be participants, and the client may not
// write before the assigned expert has opened the exchange.
func (s *messageService) authorizeRequestMessage(sender, recipient *models.User, requestID string) error {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}

	if !isRequestParticipant(request, sender) || !isRequestParticipant(request, recipient) {
		return apperrors.ErrConversationAccessDenied
	}

	if sender.ID == request.ClientID && sender.Role == models.UserRoleClient {
		if request.ExpertID == nil {
			return apperrors.ErrClientOpensConversation
		}
		opened, err := s.messageRepo.HasMessageFrom(requestID, *request.ExpertID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if !opened {
			return apperrors.ErrClientOpensConversation
		}
	}
	return nil
}

func isRequestParticipant(request *models.ServiceRequest, user *models.User) bool {
	if user.Role == models.UserRoleAdmin {
		return true
	}
	if user.ID == request.ClientID {
		return true
	}
	return request.ExpertID != nil && *request.ExpertID == user.ID
}

func (s *messageService) GetConversation(userID, otherID string, limit int) (*dto.ConversationResponse, error) {
	other, err := s.userRepo.FindByID(otherID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	if _, err := s.messageRepo.MarkConversationRead(userID, otherID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	messages, err := s.messageRepo.FindConversation(userID, otherID, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		r := buildMessageResponse(&messages[i])
		if messages[i].Sender != nil {
			r.SenderName = messages[i].Sender.FullName()
		}
		responses = append(responses, r)
	}

	return &dto.ConversationResponse{
		Contact: dto.ActorRef{
			ID:   other.ID,
			Name: other.FullName(),
			Role: other.Role,
		},
		Messages: responses,
	}, nil
}

func (s *messageService) ListConversations(userID string) ([]dto.ConversationSummary, error) {
	messages, err := s.messageRepo.FindUserMessages(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Messages arrive newest first, so the first message of each pair
	// key is the conversation's latest one.
	summaries := make([]dto.ConversationSummary, 0)
	index := make(map[string]int)

	for i := range messages {
		m := &messages[i]

		contact := m.Sender
		contactID := m.SenderID
		if m.SenderID == userID {
			contact = m.Recipient
			contactID = m.RecipientID
		}

		key := models.ConversationKey(userID, contactID)
		pos, seen := index[key]
		if !seen {
			summary := dto.ConversationSummary{
				LastMessage:     m.Content,
				LastMessageTime: m.SentAt,
			}
			summary.Contact = dto.ActorRef{ID: contactID}
			if contact != nil {
				summary.Contact.Name = contact.FullName()
				summary.Contact.Role = contact.Role
			}
			index[key] = len(summaries)
			summaries = append(summaries, summary)
			pos = index[key]
		}

		if m.RecipientID == userID && !m.IsRead {
			summaries[pos].UnreadCount++
		}
	}

	return summaries, nil
}

func (s *messageService) GetRequestMessages(userID string, requestID string) ([]dto.MessageResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !isRequestParticipant(request, user) {
		return nil, apperrors.ErrConversationAccessDenied
	}

	messages, err := s.messageRepo.FindByRequest(requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		r := buildMessageResponse(&messages[i])
		if messages[i].Sender != nil {
			r.SenderName = messages[i].Sender.FullName()
		}
		responses = append(responses, r)
	}
	return responses, nil
}

func (s *messageService) UnreadCount(userID string) (int64, error) {
	count, err := s.messageRepo.CountUnread(userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func buildMessageResponse(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:               m.ID,
		SenderID:         m.SenderID,
		RecipientID:      m.RecipientID,
		Content:          m.Content,
		SentAt:           m.SentAt,
		IsRead:           m.IsRead,
		ReadAt:           m.ReadAt,
		ServiceRequestID: m.ServiceRequestID,
	}
}
