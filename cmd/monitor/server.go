package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/k3ss/backend/internal/config"
	"github.com/k3ss/backend/internal/helicone"
	"github.com/k3ss/backend/internal/logger"
	"github.com/k3ss/backend/internal/monitor"
)

const (
	// how often provider costs are pulled from Helicone
	costPollInterval = time.Minute

	pingTimeout = 5 * time.Second
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	tracker := monitor.NewTracker(client, cfg.MaxContextSize, cfg.WarningThreshold).
		WithPublisher(monitor.NewRedisAlertPublisher(client))

	counter := monitor.NewTokenCounter()

	// cost polling is optional, only wired when a Helicone endpoint is configured
	var heliconeClient *helicone.Client
	var poller *helicone.Poller
	if cfg.HeliconeURL != "" {
		heliconeClient = helicone.NewClient(helicone.Config{
			BaseURL: cfg.HeliconeURL,
			APIKey:  os.Getenv("HELICONE_API_KEY"),
		})
		poller = helicone.NewPoller(heliconeClient, tracker, costPollInterval)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		config:   cfg,
		client:   client,
		tracker:  tracker,
		counter:  counter,
		helicone: heliconeClient,
		poller:   poller,
		router:   router,
	}

	RegisterRoutes(router, server)

	logger.Info("context monitor configured",
		"max_context_size", cfg.MaxContextSize,
		"warning_threshold", cfg.WarningThreshold,
		"cost_polling", poller != nil,
	)

	return server, nil
}
