package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"servicesbladi_backend/internal/handlers"
	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/ws"
)

// Setup builds the engine with middleware, the versioned API group and
// the websocket endpoint.
func Setup(db *gorm.DB, appHandlers *handlers.AppHandlers, wsHandler *ws.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		appHandlers.Auth.RegisterRoutes(api)
		appHandlers.User.RegisterRoutes(api)
		appHandlers.Service.RegisterRoutes(api)
		appHandlers.Request.RegisterRoutes(api)
		appHandlers.Appointment.RegisterRoutes(api)
		appHandlers.Message.RegisterRoutes(api)
		appHandlers.Notification.RegisterRoutes(api)
		appHandlers.Document.RegisterRoutes(api)
	}

	if wsHandler != nil {
		router.GET("/ws", wsHandler.Serve)
		router.GET("/ws/requests/:id", wsHandler.ServeRequest)
	}

	return router
}
