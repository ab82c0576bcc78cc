package api

import (
	"github.com/gin-gonic/gin"

	"mcqengine/internal/logger"
	"mcqengine/internal/metrics"
)

// SetupRoutes sets up the API routes. m may be nil, in which case /metrics is not served.
func SetupRoutes(router *gin.Engine, handler *Handler, log *logger.Logger, m *metrics.Metrics) {
	router.Use(RequestID(), RequestLogger(log), gin.Recovery())

	router.GET("/healthz", handler.HandleHealth)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/mcqs/generate", handler.HandleGenerateMCQs) // Generate MCQs from text or sections
		api.POST("/sections", handler.HandlePreviewSections)   // Preview chunking without model calls
		api.GET("/runs/:runId", handler.HandleGetRun)          // Stored batch report
	}
}
