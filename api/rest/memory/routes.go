package memory

import (
	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/internal/memory"
)

func RegisterRoutes(router *gin.RouterGroup, store *memory.Store) {
	memoryGroup := router.Group("/memory")
	{
		memoryGroup.POST("/:project/write", WriteHandler(store))
		memoryGroup.GET("/:project/read", ReadHandler(store))
		memoryGroup.POST("/:project/query", QueryHandler(store))
		memoryGroup.DELETE("/:project/purge", PurgeHandler(store))
	}
}
