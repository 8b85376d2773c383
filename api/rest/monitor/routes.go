package monitor

import (
	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/internal/monitor"
)

func RegisterRoutes(router *gin.RouterGroup, tracker *monitor.Tracker, counter *monitor.TokenCounter) {
	contextGroup := router.Group("/context")
	{
		contextGroup.POST("/:session/usage", RecordUsageHandler(tracker))
		contextGroup.GET("/:session", StatusHandler(tracker))
		contextGroup.POST("/:session/estimate", EstimateHandler(tracker, counter))
		contextGroup.DELETE("/:session", ResetHandler(tracker))
	}

	router.GET("/usage", SummaryHandler(tracker))
}
