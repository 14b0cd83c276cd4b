package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/auth"
	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/pkg/apperrors"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

// AuthMiddleware validates the bearer token and stores the caller's
// identity in the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header is missing")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRoles allows only the listed roles past this point.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextRoleKey)
		if !exists {
			abortUnauthorized(c, "Authentication required")
			return
		}
		role, ok := value.(models.UserRole)
		if !ok || !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": apperrors.NewForbiddenError("You do not have permission to access this resource"),
			})
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated caller's id, or false when the
// request was not authenticated.
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

func GetUserRole(c *gin.Context) (models.UserRole, bool) {
	value, exists := c.Get(ContextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": apperrors.NewUnauthorizedError(message),
	})
}
