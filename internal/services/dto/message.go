package dto

import "time"

type SendMessageRequest struct {
	RecipientID      string `json:"recipient_id" validate:"required,uuid"`
	Content          string `json:"content" validate:"required"`
	ServiceRequestID string `json:"service_request_id" validate:"omitempty,uuid"`
}

type MessageResponse struct {
	ID               string     `json:"id"`
	SenderID         string     `json:"sender_id"`
	SenderName       string     `json:"sender_name,omitempty"`
	RecipientID      string     `json:"recipient_id"`
	Content          string     `json:"content"`
	SentAt           time.Time  `json:"sent_at"`
	IsRead           bool       `json:"is_read"`
	ReadAt           *time.Time `json:"read_at,omitempty"`
	ServiceRequestID *string    `json:"service_request_id,omitempty"`
}

// ConversationSummary is one entry of the contact list: the other
// party, the latest message preview and the unread counter.
type ConversationSummary struct {
	Contact         ActorRef  `json:"contact"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}

type ConversationResponse struct {
	Contact  ActorRef          `json:"contact"`
	Messages []MessageResponse `json:"messages"`
}
