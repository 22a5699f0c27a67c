package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginhandler "dynamo-user-service/internal/adapter/gin/handler"
	"dynamo-user-service/internal/adapter/gin/middleware"
	ginrouter "dynamo-user-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handler *ginhandler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	prefix string,
	addr string,
	l *zap.Logger,
) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := ginrouter.SetupRouter(handler, rateLimiter, prefix, l)

	l.Info("Gin REST API configured", zap.String("address", addr), zap.String("prefix", prefix))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
