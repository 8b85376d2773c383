package memory

import (
	"context"
	"fmt"

	"github.com/k3ss/backend/internal/logger"
)

// primary (Redis stream) operations the combined store depends on
type Primary interface {
	Append(ctx context.Context, project string, data, metadata map[string]any) (Entry, error)
	Exists(ctx context.Context, project string) (bool, error)
	Range(ctx context.Context, project string, opts ReadOptions) (ListResult, error)
	All(ctx context.Context, project string) ([]Entry, error)
	Delete(ctx context.Context, project string) (bool, error)
}

// backup (SQLite) operations the combined store depends on
type Backup interface {
	Insert(ctx context.Context, entry Entry) error
	Range(ctx context.Context, project string, opts ReadOptions) (ListResult, error)
	Query(ctx context.Context, project string, opts QueryOptions) (ListResult, error)
	DeleteProject(ctx context.Context, project string) (int64, error)
}

// Store combines the Redis primary with the SQLite backup: writes go to the
// stream (the archiver persists them), reads fall back to SQLite when the
// stream is missing or Redis is down
type Store struct {
	primary Primary
	backup  Backup
}

// creates a combined store
func NewStore(primary Primary, backup Backup) *Store {
	return &Store{primary: primary, backup: backup}
}

// appends an entry to the project stream
func (s *Store) Write(ctx context.Context, project string, data, metadata map[string]any) (Entry, error) {
	return s.primary.Append(ctx, project, data, metadata)
}

// reads a page of entries, falling back to the backup when the stream
// is absent or Redis fails
func (s *Store) Read(ctx context.Context, project string, opts ReadOptions) (ListResult, error) {
	exists, err := s.primary.Exists(ctx, project)
	if err != nil {
		logger.ErrorErr(err, "redis unavailable for read, falling back to sqlite", "project", project)
		return s.backup.Range(ctx, project, opts)
	}

	if !exists {
		// stream may have expired or never existed; the backup is authoritative
		result, err := s.backup.Range(ctx, project, opts)
		if err != nil {
			logger.ErrorErr(err, "sqlite fallback failed for missing stream", "project", project)
			return ListResult{Items: []Entry{}}, nil
		}

		return result, nil
	}

	result, err := s.primary.Range(ctx, project, opts)
	if err != nil {
		logger.ErrorErr(err, "redis read failed, falling back to sqlite", "project", project)
		return s.backup.Range(ctx, project, opts)
	}

	return result, nil
}

// searches entries by substring plus equality filters, falling back to the
// backup's LIKE search when Redis fails
func (s *Store) Query(ctx context.Context, project string, opts QueryOptions) (ListResult, error) {
	entries, err := s.primary.All(ctx, project)
	if err != nil {
		logger.ErrorErr(err, "redis query failed, falling back to sqlite", "project", project)
		return s.backup.Query(ctx, project, opts)
	}

	matched := filterEntries(entries, opts.Query, opts.Filters)
	total := len(matched)
	matched = paginateEntries(matched, opts.Offset, opts.Limit)

	return ListResult{Items: matched, Total: total}, nil
}

// removes all data for a project from both stores
func (s *Store) Purge(ctx context.Context, project string) (PurgeResult, error) {
	streamDeleted, err := s.primary.Delete(ctx, project)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("failed to purge stream: %w", err)
	}

	rowsDeleted, err := s.backup.DeleteProject(ctx, project)
	if err != nil {
		return PurgeResult{StreamDeleted: streamDeleted}, fmt.Errorf("failed to purge backup: %w", err)
	}

	return PurgeResult{StreamDeleted: streamDeleted, RowsDeleted: rowsDeleted}, nil
}

// applies offset/limit pagination to entries
func paginateEntries(entries []Entry, offset, limit int) []Entry {
	if offset >= len(entries) {
		return []Entry{}
	}

	if offset > 0 {
		entries = entries[offset:]
	}

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	return entries
}
