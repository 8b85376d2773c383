package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/internal/config"
	"github.com/k3ss/backend/internal/memory"
)

const (
	// how often the archiver copies stream entries to SQLite
	archiveInterval = 30 * time.Second
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	stream, err := memory.NewStreamStore(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	sqlite, err := memory.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		stream.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to open sqlite backup: %w", err)
	}

	store := memory.NewStore(stream, sqlite)

	// create archiver to periodically persist stream entries to SQLite
	archiver := memory.NewArchiver(stream, sqlite, archiveInterval)

	ratelimit, err := RateLimitMiddleware(stream)
	if err != nil {
		sqlite.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		stream.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure

		return nil, err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		config:    cfg,
		stream:    stream,
		sqlite:    sqlite,
		store:     store,
		archiver:  archiver,
		router:    router,
		ratelimit: ratelimit,
	}

	RegisterRoutes(router, server)

	return server, nil
}
