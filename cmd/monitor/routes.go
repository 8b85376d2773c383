package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/api/rest/health"
	"github.com/k3ss/backend/api/rest/monitor"
	"github.com/k3ss/backend/internal/auth"
)

const serviceVersion = "1.0.0"

// allows browser clients (webui on another port) to call the API
func CORSMiddleware() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, auth.APIKeyHeader)

	return cors.New(corsConfig)
}

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(CORSMiddleware())

	deps := map[string]health.Pinger{
		"redis": server.tracker,
	}
	if server.helicone != nil {
		deps["helicone"] = server.helicone
	}

	router.GET("/health", health.Handler("context-monitor", serviceVersion, deps))

	v1 := router.Group("/api/v1")
	v1.Use(auth.APIKeyMiddleware(server.config.APIKey))

	{
		v1.GET("/ping", health.PingHandler)

		monitor.RegisterRoutes(v1, server.tracker, server.counter)
	}
}
