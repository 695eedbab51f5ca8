package server

import (
	"github.com/gin-gonic/gin"

	"docbrains-backend/internal/chat"
	"docbrains-backend/internal/documents"
	"docbrains-backend/internal/services/health"
	"docbrains-backend/internal/shared/config"
	"docbrains-backend/internal/shared/server/middleware"
)

// RouterDeps carries the handlers mounted under /api.
type RouterDeps struct {
	Config          config.Config
	DocumentHandler *documents.Handler
	ChatHandler     *chat.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api")
	registerIndexRoutes(api)
	if deps.Health != nil {
		api.GET("/health", deps.Health.Handler())
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
