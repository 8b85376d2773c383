package monitor

import (
	"github.com/k3ss/backend/internal/monitor"
)

// request body for recording token usage
type UsageRequest struct {
	Model        string `json:"model" binding:"required"`
	Provider     string `json:"provider" binding:"required"`
	InputTokens  int    `json:"input_tokens" binding:"min=0"`
	OutputTokens int    `json:"output_tokens" binding:"min=0"`
	Operation    string `json:"operation"`
}

type UsageResponse struct {
	Status monitor.SessionStatus `json:"status"`
	Alert  *monitor.Alert        `json:"alert,omitempty"`
}

// request body for estimating tokens of unsent text
type EstimateRequest struct {
	Text string `json:"text" binding:"required"`
}

type EstimateResponse struct {
	Tokens    int                   `json:"tokens"`
	Projected monitor.SessionStatus `json:"projected"`
}

type ResetResponse struct {
	Status  string `json:"status"`
	Session string `json:"session"`
}
