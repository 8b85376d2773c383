package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/k3ss/backend/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS memory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	stream_id TEXT UNIQUE,
	project TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	data TEXT NOT NULL,
	metadata TEXT
);
CREATE INDEX IF NOT EXISTS idx_memory_project_timestamp ON memory (project, timestamp);
`

// handles durable backup storage in SQLite (the LiteFS-replicated volume in deployment)
type SQLiteStore struct {
	db *sql.DB
}

// opens the SQLite database and ensures the schema exists
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// single writer; avoids SQLITE_BUSY under the archiver + purge
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}

	logger.Info("sqlite store ready", "path", path)

	return &SQLiteStore{db: db}, nil
}

// closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// verifies the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// inserts one entry; re-inserting the same stream ID is a no-op
func (s *SQLiteStore) Insert(ctx context.Context, entry Entry) error {
	dataJSON, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	var metadataJSON any
	if entry.Metadata != nil {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadataJSON = string(encoded)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO memory (stream_id, project, timestamp, data, metadata) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Project, entry.Timestamp, string(dataJSON), metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert into sqlite: %w", err)
	}

	return nil
}

// reads a page of entries for a project with optional time bounds, newest first
func (s *SQLiteStore) Range(ctx context.Context, project string, opts ReadOptions) (ListResult, error) {
	where := "WHERE project = ?"
	args := []any{project}

	if opts.StartTime != "" {
		where += " AND timestamp >= ?"
		args = append(args, opts.StartTime)
	}

	if opts.EndTime != "" {
		where += " AND timestamp <= ?"
		args = append(args, opts.EndTime)
	}

	return s.list(ctx, project, where, args, opts.Limit, opts.Offset)
}

// searches entries by substring match on data/metadata with optional equality filters
func (s *SQLiteStore) Query(ctx context.Context, project string, opts QueryOptions) (ListResult, error) {
	where := "WHERE project = ? AND (data LIKE ? OR metadata LIKE ?)"
	pattern := "%" + opts.Query + "%"
	args := []any{project, pattern, pattern}

	for key, value := range opts.Filters {
		filterPattern := filterLikePattern(key, value)
		where += " AND (data LIKE ? OR metadata LIKE ?)"
		args = append(args, filterPattern, filterPattern)
	}

	return s.list(ctx, project, where, args, opts.Limit, opts.Offset)
}

// runs a count plus a paginated select for the given WHERE clause
func (s *SQLiteStore) list(ctx context.Context, project, where string, args []any, limit, offset int) (ListResult, error) {
	var total int
	countQuery := "SELECT COUNT(*) FROM memory " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count sqlite rows: %w", err)
	}

	query := "SELECT id, stream_id, timestamp, data, metadata FROM memory " + where +
		" ORDER BY timestamp DESC LIMIT ? OFFSET ?"
	args = append(args, normalizeLimit(limit), maxInt(offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to query sqlite: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	items := []Entry{}

	for rows.Next() {
		var (
			rowID    int64
			streamID sql.NullString
			entry    = Entry{Project: project, Data: map[string]any{}}
			dataRaw  string
			metaRaw  sql.NullString
		)

		if err := rows.Scan(&rowID, &streamID, &entry.Timestamp, &dataRaw, &metaRaw); err != nil {
			return ListResult{}, fmt.Errorf("failed to scan sqlite row: %w", err)
		}

		if streamID.Valid && streamID.String != "" {
			entry.ID = streamID.String
		} else {
			entry.ID = strconv.FormatInt(rowID, 10)
		}

		if err := json.Unmarshal([]byte(dataRaw), &entry.Data); err != nil {
			logger.Warn("corrupt data column in sqlite row", "project", project, "row", rowID)
		}

		if metaRaw.Valid && metaRaw.String != "" {
			metadata := map[string]any{}
			if err := json.Unmarshal([]byte(metaRaw.String), &metadata); err == nil && len(metadata) > 0 {
				entry.Metadata = metadata
			}
		}

		items = append(items, entry)
	}

	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("failed to iterate sqlite rows: %w", err)
	}

	return ListResult{Items: items, Total: total}, nil
}

// removes every row for a project and reports how many were deleted
func (s *SQLiteStore) DeleteProject(ctx context.Context, project string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM memory WHERE project = ?", project)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sqlite rows: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sqlite rows: %w", err)
	}

	return deleted, nil
}

// builds the LIKE pattern matching a key/value pair inside serialized JSON
func filterLikePattern(key string, value any) string {
	encodedKey, _ := json.Marshal(key)     //nolint:errcheck // strings always marshal
	encodedValue, _ := json.Marshal(value) //nolint:errcheck // request values round-trip from JSON

	return "%" + string(encodedKey) + ":" + strings.TrimSpace(string(encodedValue)) + "%"
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}

	return limit
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
