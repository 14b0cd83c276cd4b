package handlers

import (
	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type AppointmentHandler struct {
	BaseHandler
	appointmentService services.AppointmentService
}

func NewAppointmentHandler(appointmentService services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

func (h *AppointmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments", middleware.AuthMiddleware())
	{
		appointments.POST("", h.Schedule)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.POST("/:id/confirm", h.Confirm)
		appointments.POST("/:id/reschedule", h.Reschedule)
		appointments.POST("/:id/cancel", h.Cancel)
		appointments.POST("/:id/complete", h.Complete)
		appointments.POST("/:id/missed", h.MarkMissed)
	}

	rg.GET("/requests/:id/appointments", middleware.AuthMiddleware(), h.ListByRequest)
}

func (h *AppointmentHandler) Schedule(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.ScheduleAppointmentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.appointmentService.Schedule(userID, req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	status := models.AppointmentStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Unknown appointment status"))
		return
	}

	responses, err := h.appointmentService.List(userID, status)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"appointments": responses})
}

func (h *AppointmentHandler) ListByRequest(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	responses, err := h.appointmentService.ListByRequest(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"appointments": responses})
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	response, err := h.appointmentService.Get(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	response, err := h.appointmentService.Confirm(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.RescheduleAppointmentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.appointmentService.Reschedule(userID, c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	response, err := h.appointmentService.Cancel(userID, c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	response, err := h.appointmentService.Complete(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *AppointmentHandler) MarkMissed(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	response, err := h.appointmentService.MarkMissed(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}
