package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type MessageHandler struct {
	BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	messages := rg.Group("/messages", middleware.AuthMiddleware())
	{
		messages.POST("", h.Send)
		messages.GET("/conversations", h.ListConversations)
		messages.GET("/conversations/:user_id", h.GetConversation)
		messages.GET("/unread-count", h.UnreadCount)
	}

	rg.GET("/requests/:id/messages", middleware.AuthMiddleware(), h.GetRequestMessages)
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.messageService.Send(userID, req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	summaries, err := h.messageService.ListConversations(userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"conversations": summaries})
}

func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	response, err := h.messageService.GetConversation(userID, c.Param("user_id"), limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *MessageHandler) GetRequestMessages(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	responses, err := h.messageService.GetRequestMessages(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"messages": responses})
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	count, err := h.messageService.UnreadCount(userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"unread_count": count})
}
