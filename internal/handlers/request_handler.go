package handlers

import (
	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type RequestHandler struct {
	BaseHandler
	requestService services.RequestService
}

func NewRequestHandler(requestService services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/requests", middleware.AuthMiddleware())
	{
		requests.POST("", h.Create)
		requests.GET("", h.List)
		requests.GET("/unassigned", middleware.RequireRoles(models.UserRoleExpert, models.UserRoleAdmin), h.ListUnassigned)
		requests.GET("/:id", h.Get)
		requests.PUT("/:id", h.Update)
		requests.POST("/:id/assign", middleware.RequireRoles(models.UserRoleExpert, models.UserRoleAdmin), h.AssignExpert)
		requests.POST("/:id/status", middleware.RequireRoles(models.UserRoleExpert, models.UserRoleAdmin), h.ChangeStatus)
		requests.POST("/:id/cancel", h.Cancel)
		requests.DELETE("/:id", middleware.RequireRoles(models.UserRoleAdmin), h.Delete)
	}
}

func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.CreateRequestRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.requestService.Create(userID, req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

func (h *RequestHandler) List(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var criteria dto.RequestCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	response, err := h.requestService.List(userID, criteria)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *RequestHandler) ListUnassigned(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var criteria dto.RequestCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	response, err := h.requestService.ListUnassigned(userID, criteria)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *RequestHandler) Get(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	response, err := h.requestService.Get(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *RequestHandler) Update(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateRequestRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.requestService.Update(userID, c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *RequestHandler) AssignExpert(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.AssignExpertRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.requestService.AssignExpert(userID, c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *RequestHandler) ChangeStatus(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.ChangeStatusRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.requestService.ChangeStatus(userID, c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.CancelRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	response, err := h.requestService.Cancel(userID, c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	if err := h.requestService.Delete(userID, c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
