package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// dependency that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	depConnected    = "connected"
	depDisconnected = "disconnected"

	pingTimeout = 3 * time.Second
)

// returns the service health status including dependency reachability
func Handler(service, version string, deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		depStatus := make(map[string]string, len(deps))
		connected := 0

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				depStatus[name] = depDisconnected
				continue
			}

			depStatus[name] = depConnected
			connected++
		}

		status := StatusHealthy
		httpStatus := http.StatusOK

		switch {
		case len(deps) > 0 && connected == 0:
			status = StatusUnhealthy
			httpStatus = http.StatusServiceUnavailable
		case connected < len(deps):
			status = StatusDegraded
		}

		c.JSON(httpStatus, Response{
			Status:  status,
			Service: service,
			Version: version,
			Deps:    depStatus,
		})
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}
