package main

import (
	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/api/rest/health"
	"github.com/k3ss/backend/api/rest/memory"
	"github.com/k3ss/backend/internal/auth"
)

const serviceVersion = "1.0.0"

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(CORSMiddleware())
	router.GET("/health", health.Handler("memory-api", serviceVersion, map[string]health.Pinger{
		"redis":  server.stream,
		"sqlite": server.sqlite,
	}))

	v1 := router.Group("/api/v1")
	v1.Use(server.ratelimit)
	v1.Use(auth.APIKeyMiddleware(server.config.APIKey))

	{
		v1.GET("/ping", health.PingHandler)

		memory.RegisterRoutes(v1, server.store)
	}
}
