package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/k3ss/backend/internal/config"
	"github.com/k3ss/backend/internal/helicone"
	"github.com/k3ss/backend/internal/monitor"
)

// holds all dependencies and state for the context monitor server
type Server struct {
	config   *config.Config
	client   *redis.Client
	tracker  *monitor.Tracker
	counter  *monitor.TokenCounter
	helicone *helicone.Client
	poller   *helicone.Poller
	router   *gin.Engine
}
