package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"servicesbladi_backend/internal/auth"
	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades authenticated requests to websocket sessions:
// a per-user notification stream, and one chat room per service
// request conversation.
type Handler struct {
	manager     *Manager
	messages    services.MessageService
	requestRepo repositories.RequestRepository
}

func NewHandler(manager *Manager, messages services.MessageService, requestRepo repositories.RequestRepository) *Handler {
	return &Handler{manager: manager, messages: messages, requestRepo: requestRepo}
}

// Serve opens the notification stream. Authentication uses the token
// query parameter (browsers cannot set headers on websocket upgrades).
func (h *Handler) Serve(c *gin.Context) {
	claims, ok := h.authenticate(c)
	if !ok {
		return
	}
	h.open(c, claims, "")
}

// ServeRequest joins the chat room of one service request. Only the
// owning client, the assigned expert or an admin may join; everyone
// else is refused before the upgrade.
func (h *Handler) ServeRequest(c *gin.Context) {
	claims, ok := h.authenticate(c)
	if !ok {
		return
	}

	request, err := h.requestRepo.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if !canJoinRoom(claims, request) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access to this conversation is denied"})
		return
	}

	h.open(c, claims, request.ID)
}

func (h *Handler) authenticate(c *gin.Context) (*auth.Claims, bool) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return nil, false
	}

	claims, err := auth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return nil, false
	}
	return claims, true
}

func (h *Handler) open(c *gin.Context, claims *auth.Claims, room string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	client := newClient(h.manager, h, conn, claims.UserID, claims.Role, room)
	h.manager.register <- client

	go client.writePump()
	go client.readPump()
}

func canJoinRoom(claims *auth.Claims, request *models.ServiceRequest) bool {
	if claims.Role == models.UserRoleAdmin {
		return true
	}
	if request.ClientID == claims.UserID {
		return true
	}
	return request.ExpertID != nil && *request.ExpertID == claims.UserID
}

// handleFrame runs an inbound chat frame through the messaging
// engine. Rejections come back as an error frame to the sender only;
// accepted messages are broadcast to every session in the room.
func (h *Handler) handleFrame(c *Client, frame Frame) {
	switch frame.Action {
	case "send_message":
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			c.sendError("invalid send_message payload")
			return
		}

		recipientID, err := h.counterpartOf(c)
		if err != nil {
			c.sendError(errorMessage(err))
			return
		}

		msg, err := h.messages.Send(c.userID, dto.SendMessageRequest{
			RecipientID:      recipientID,
			Content:          payload.Content,
			ServiceRequestID: c.room,
		})
		if err != nil {
			c.sendError(errorMessage(err))
			return
		}

		h.manager.PublishToRoom(c.room, "new_message", msg)

	default:
		c.sendError("unknown action")
	}
}

// counterpartOf resolves the recipient of a room frame. The request
// is reloaded on every frame so an assignment made after connect is
// picked up.
func (h *Handler) counterpartOf(c *Client) (string, error) {
	request, err := h.requestRepo.FindByID(c.room)
	if err != nil {
		return "", err
	}

	if c.userID == request.ClientID {
		if request.ExpertID == nil {
			return "", apperrors.ErrClientOpensConversation
		}
		return *request.ExpertID, nil
	}
	return request.ClientID, nil
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "message could not be delivered"
}
