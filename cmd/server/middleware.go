package main

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/k3ss/backend/internal/auth"
	"github.com/k3ss/backend/internal/errors"
	"github.com/k3ss/backend/internal/memory"
)

const (
	rateLimitPeriod   = time.Minute
	rateLimitRequests = 120
)

// allows browser clients (webui on another port) to call the API
func CORSMiddleware() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, auth.APIKeyHeader)

	return cors.New(corsConfig)
}

// per-client rate limiting backed by Redis, shared across replicas
func RateLimitMiddleware(stream *memory.StreamStore) (gin.HandlerFunc, error) {
	store, err := sredis.NewStoreWithOptions(stream.Client(), limiter.StoreOptions{
		Prefix: "ratelimit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit store: %w", err)
	}

	instance := limiter.New(store, limiter.Rate{
		Period: rateLimitPeriod,
		Limit:  rateLimitRequests,
	})

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		errors.TooManyRequests(c, "rate limit exceeded, retry later")
	})), nil
}
