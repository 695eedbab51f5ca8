package server

import (
	"github.com/gin-gonic/gin"

	"docbrains-backend/internal/shared/metrics"
	"docbrains-backend/internal/shared/server/respond"
)

const serviceBanner = "DocBrains API - AI document analysis"

// registerIndexRoutes attaches the identity and metrics endpoints.
func registerIndexRoutes(rg *gin.RouterGroup) {
	rg.GET("/", func(c *gin.Context) {
		respond.Message(c, serviceBanner)
	})
	rg.GET("/metrics", metrics.Handler())
}
