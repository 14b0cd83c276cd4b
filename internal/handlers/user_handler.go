package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users", middleware.AuthMiddleware())
	{
		users.GET("/me", h.GetProfile)
		users.PUT("/me", h.UpdateProfile)
		users.GET("/experts", h.ListExperts)

		admin := users.Group("", middleware.RequireRoles(models.UserRoleAdmin))
		{
			admin.GET("", h.ListByRole)
			admin.PATCH("/:id/active", h.SetActive)
		}
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	profile, err := h.userService.UpdateProfile(userID, req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, profile)
}

func (h *UserHandler) ListExperts(c *gin.Context) {
	limit, offset := pagination(c)
	experts, err := h.userService.ListExperts(limit, offset)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"experts": experts})
}

func (h *UserHandler) ListByRole(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	role := models.UserRole(c.DefaultQuery("role", string(models.UserRoleClient)))
	limit, offset := pagination(c)

	users, err := h.userService.ListByRole(userID, role, limit, offset)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"users": users})
}

func (h *UserHandler) SetActive(c *gin.Context) {
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

	if err := h.userService.SetActive(userID, c.Param("id"), body.Active); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
