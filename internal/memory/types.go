package memory

import "time"

// fixed-width timestamp layout so lexicographic order matches chronological order
// in both Redis stream fields and SQLite text columns
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Entry is a single stored memory record
type Entry struct {
	ID        string         `json:"id"`
	Project   string         `json:"project"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ReadOptions controls paginated time-range reads
type ReadOptions struct {
	Limit     int
	Offset    int
	StartTime string // RFC3339, optional
	EndTime   string // RFC3339, optional
}

// QueryOptions controls text search with optional equality filters
type QueryOptions struct {
	Query   string
	Limit   int
	Offset  int
	Filters map[string]any
}

// ListResult is a page of entries plus the total match count
type ListResult struct {
	Items []Entry
	Total int
}

// PurgeResult reports what a purge removed from each store
type PurgeResult struct {
	StreamDeleted bool
	RowsDeleted   int64
}

// formats the current time for storage
func nowTimestamp() string {
	return time.Now().UTC().Format(TimestampLayout)
}
