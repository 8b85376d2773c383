package memory

import (
	"github.com/k3ss/backend/internal/memory"
)

// request body for memory writes
type WriteRequest struct {
	Data     map[string]any `json:"data" binding:"required"`
	Metadata map[string]any `json:"metadata"`
}

type WriteResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Project   string `json:"project"`
	Timestamp string `json:"timestamp"`
}

// request body for memory queries
type QueryRequest struct {
	Query   string         `json:"query" binding:"required"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Filters map[string]any `json:"filters"`
}

type ListResponse struct {
	Items  []memory.Entry `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Query  string         `json:"query,omitempty"`
}

type PurgeResponse struct {
	Status        string `json:"status"`
	Project       string `json:"project"`
	StreamDeleted bool   `json:"stream_deleted"`
	RowsDeleted   int64  `json:"rows_deleted"`
	Timestamp     string `json:"timestamp"`
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)
