package handlers

import (
	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", middleware.AuthMiddleware(), h.Logout)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.authService.Register(req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.authService.Login(req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.authService.Refresh(req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(userID); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
