package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/validator"
	"servicesbladi_backend/pkg/apperrors"
)

// BaseHandler carries the helpers every resource handler embeds.
type BaseHandler struct{}

// BindAndValidateJSON binds the JSON body into dst and runs struct
// validation. It writes the error response itself and reports success.
func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return false
	}
	if problems := validator.ValidateStruct(dst); problems != nil {
		apperrors.HandleError(c, apperrors.ValidationError(problems))
		return false
	}
	return true
}

// BindAndValidateQuery does the same for query parameters.
func (h *BaseHandler) BindAndValidateQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters"))
		return false
	}
	if problems := validator.ValidateStruct(dst); problems != nil {
		apperrors.HandleError(c, apperrors.ValidationError(problems))
		return false
	}
	return true
}

// AuthenticatedUserID returns the caller's id or writes a 401.
func (h *BaseHandler) AuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return "", false
	}
	return userID, true
}

func (h *BaseHandler) OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func (h *BaseHandler) Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
