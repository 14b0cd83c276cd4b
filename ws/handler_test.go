package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicesbladi_backend/internal/auth"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type stubRequests struct {
	repositories.RequestRepository
	request *models.ServiceRequest
	err     error
}

func (s *stubRequests) FindByID(id string) (*models.ServiceRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.request, nil
}

type stubMessages struct {
	services.MessageService
	response *dto.MessageResponse
	err      error

	senderID string
	sent     dto.SendMessageRequest
}

func (s *stubMessages) Send(senderID string, req dto.SendMessageRequest) (*dto.MessageResponse, error) {
	s.senderID = senderID
	s.sent = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func sessionFor(t *testing.T, h *Handler, userID string, role models.UserRole, room string) *Client {
	t.Helper()
	return &Client{
		manager: h.manager,
		handler: h,
		send:    make(chan []byte, 4),
		userID:  userID,
		role:    role,
		room:    room,
	}
}

func frameOf(t *testing.T, action string, data interface{}) Frame {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return Frame{Action: action, Data: raw}
}

func decodeEnvelope(t *testing.T, raw []byte) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func chatRequest(expertID *string) *models.ServiceRequest {
	return &models.ServiceRequest{
		BaseModel: models.BaseModel{ID: "req-1"},
		ClientID:  "client-1",
		ExpertID:  expertID,
		Status:    models.RequestStatusInProgress,
	}
}

func TestSendMessageFrameBroadcastsToRoom(t *testing.T) {
	expertID := "expert-1"
	messages := &stubMessages{response: &dto.MessageResponse{
		ID:       "msg-1",
		SenderID: expertID,
		Content:  "Bonjour",
		SentAt:   time.Now(),
	}}
	h := NewHandler(NewManager(), messages, &stubRequests{request: chatRequest(&expertID)})

	client := sessionFor(t, h, expertID, models.UserRoleExpert, "req-1")
	h.handleFrame(client, frameOf(t, "send_message", map[string]string{"content": "Bonjour"}))

	assert.Equal(t, expertID, messages.senderID)
	assert.Equal(t, "client-1", messages.sent.RecipientID)
	assert.Equal(t, "req-1", messages.sent.ServiceRequestID)

	select {
	case raw := <-h.manager.roomOut:
		assert.Equal(t, "req-1", raw.room)
		env := decodeEnvelope(t, raw.payload)
		assert.Equal(t, "new_message", env.Event)
	default:
		t.Fatal("expected a room broadcast")
	}
	assert.Empty(t, client.send, "sender must not receive an error frame")
}

func TestClientFrameWithoutExpertIsRefused(t *testing.T) {
	messages := &stubMessages{}
	h := NewHandler(NewManager(), messages, &stubRequests{request: chatRequest(nil)})

	client := sessionFor(t, h, "client-1", models.UserRoleClient, "req-1")
	h.handleFrame(client, frameOf(t, "send_message", map[string]string{"content": "Bonjour"}))

	assert.Empty(t, messages.senderID, "nothing must reach the messaging engine")
	assert.Empty(t, h.manager.roomOut)

	select {
	case raw := <-client.send:
		env := decodeEnvelope(t, raw)
		assert.Equal(t, "error", env.Event)
	default:
		t.Fatal("expected an error frame for the sender")
	}
}

func TestRejectedSendErrorsToSenderOnly(t *testing.T) {
	expertID := "expert-1"
	messages := &stubMessages{err: apperrors.ErrClientOpensConversation}
	h := NewHandler(NewManager(), messages, &stubRequests{request: chatRequest(&expertID)})

	client := sessionFor(t, h, "client-1", models.UserRoleClient, "req-1")
	h.handleFrame(client, frameOf(t, "send_message", map[string]string{"content": "Bonjour"}))

	assert.Empty(t, h.manager.roomOut, "rejected messages are never broadcast")

	raw := <-client.send
	env := decodeEnvelope(t, raw)
	assert.Equal(t, "error", env.Event)

	payload, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrClientOpensConversation.Message, payload["message"])
}

func TestUnknownActionRejected(t *testing.T) {
	expertID := "expert-1"
	h := NewHandler(NewManager(), &stubMessages{}, &stubRequests{request: chatRequest(&expertID)})

	client := sessionFor(t, h, expertID, models.UserRoleExpert, "req-1")
	h.handleFrame(client, frameOf(t, "add_reaction", map[string]string{}))

	raw := <-client.send
	assert.Equal(t, "error", decodeEnvelope(t, raw).Event)
}

func TestCanJoinRoom(t *testing.T) {
	expertID := "expert-1"
	request := chatRequest(&expertID)

	cases := []struct {
		name    string
		userID  string
		role    models.UserRole
		allowed bool
	}{
		{"owning client", "client-1", models.UserRoleClient, true},
		{"assigned expert", "expert-1", models.UserRoleExpert, true},
		{"any admin", "admin-1", models.UserRoleAdmin, true},
		{"other client", "client-2", models.UserRoleClient, false},
		{"other expert", "expert-2", models.UserRoleExpert, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := &auth.Claims{UserID: tc.userID, Role: tc.role}
			assert.Equal(t, tc.allowed, canJoinRoom(claims, request))
		})
	}
}
