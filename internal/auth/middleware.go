package auth

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/internal/errors"
)

// header carrying the service API key
const APIKeyHeader = "X-API-KEY"

// validates the X-API-KEY header against the configured key
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			errors.Unauthorized(c, "API key required")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			errors.Unauthorized(c, "invalid API key")
			c.Abort()
			return
		}

		c.Next()
	}
}
