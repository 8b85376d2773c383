package main

import (
	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/internal/config"
	"github.com/k3ss/backend/internal/memory"
)

// holds all dependencies and state for the memory API server
type Server struct {
	config   *config.Config
	stream   *memory.StreamStore
	sqlite   *memory.SQLiteStore
	store    *memory.Store
	archiver *memory.Archiver
	router   *gin.Engine

	ratelimit gin.HandlerFunc
}
