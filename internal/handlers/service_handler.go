package handlers

import (
	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/pkg/apperrors"
)

// ServiceHandler serves the public service catalog and its admin
// management endpoints.
type ServiceHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewServiceHandler(catalogService services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalogService: catalogService}
}

func (h *ServiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalog := rg.Group("/services")
	{
		catalog.GET("", h.ListActive)
		catalog.GET("/:id", h.Get)

		admin := catalog.Group("", middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
		{
			admin.POST("", h.Create)
			admin.PUT("/:id", h.Update)
			admin.PATCH("/:id/active", h.SetActive)
		}
	}
}

func (h *ServiceHandler) ListActive(c *gin.Context) {
	services, err := h.catalogService.ListActive(c.Query("category"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"services": services})
}

func (h *ServiceHandler) Get(c *gin.Context) {
	service, err := h.catalogService.Get(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, service)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var service models.Service
	if err := c.ShouldBindJSON(&service); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}
	if service.Title == "" || service.Category == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Title and category are required"))
		return
	}

	if err := h.catalogService.Create(userID, &service); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.Created(c, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var service models.Service
	if err := c.ShouldBindJSON(&service); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}
	service.ID = c.Param("id")

	if err := h.catalogService.Update(userID, &service); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, service)
}

func (h *ServiceHandler) SetActive(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	if err := h.catalogService.SetActive(userID, c.Param("id"), body.Active); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
