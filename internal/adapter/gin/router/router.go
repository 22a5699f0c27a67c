package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "dynamo-user-service/api/docs" // registers the OpenAPI document
	"dynamo-user-service/internal/adapter/gin/handler"
	"dynamo-user-service/internal/adapter/gin/middleware"
	"dynamo-user-service/pkg/logger"
)

// SetupRouter configures and returns a Gin router with all routes and middleware.
// User routes are mounted under prefix.
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	prefix string,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(rateLimiter.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)))

	users := router.Group(prefix)
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:"+handler.UserIDParam, userHandler.GetUser)
		users.PUT("/:"+handler.UserIDParam, userHandler.UpdateUser)
		users.DELETE("/:"+handler.UserIDParam, userHandler.DeleteUser)
	}

	return router
}
