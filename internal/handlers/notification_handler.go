package handlers

import (
	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/pkg/apperrors"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications", middleware.AuthMiddleware())
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/:id/read", h.MarkAsRead)
		notifications.POST("/read-all", h.MarkAllAsRead)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var criteria repositories.NotificationCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters"))
		return
	}

	response, err := h.notificationService.GetUserNotifications(userID, criteria)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	if err := h.notificationService.MarkAsRead(userID, c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	if err := h.notificationService.MarkAllAsRead(userID); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
