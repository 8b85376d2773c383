package monitor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k3ss/backend/internal/errors"
	"github.com/k3ss/backend/internal/monitor"
)

// RecordUsageHandler records an LLM transaction against a session's budget
func RecordUsageHandler(tracker *monitor.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.Param("session")

		var req UsageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		status, alert, err := tracker.Track(c.Request.Context(), session, monitor.UsageEvent{
			Model:        req.Model,
			Provider:     req.Provider,
			InputTokens:  req.InputTokens,
			OutputTokens: req.OutputTokens,
			Operation:    req.Operation,
		})
		if err != nil {
			errors.InternalError(c, "failed to record usage", err)
			return
		}

		c.JSON(http.StatusOK, UsageResponse{Status: status, Alert: alert})
	}
}

// StatusHandler returns a session's position against its context window
func StatusHandler(tracker *monitor.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.Param("session")

		status, err := tracker.Status(c.Request.Context(), session)
		if err != nil {
			errors.InternalError(c, "failed to read session status", err)
			return
		}

		c.JSON(http.StatusOK, status)
	}
}

// EstimateHandler estimates tokens for unsent text and the projected level
func EstimateHandler(tracker *monitor.Tracker, counter *monitor.TokenCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.Param("session")

		var req EstimateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		tokens := counter.Count(req.Text)

		projected, err := tracker.Project(c.Request.Context(), session, tokens)
		if err != nil {
			errors.InternalError(c, "failed to project session status", err)
			return
		}

		c.JSON(http.StatusOK, EstimateResponse{Tokens: tokens, Projected: projected})
	}
}

// ResetHandler clears a session's counters and alert state
func ResetHandler(tracker *monitor.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.Param("session")

		if err := tracker.Reset(c.Request.Context(), session); err != nil {
			errors.InternalError(c, "failed to reset session", err)
			return
		}

		c.JSON(http.StatusOK, ResetResponse{Status: "success", Session: session})
	}
}

// SummaryHandler returns the global usage rollup
func SummaryHandler(tracker *monitor.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := tracker.Summary(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to read usage summary", err)
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}
