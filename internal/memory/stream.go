package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/k3ss/backend/internal/logger"
)

const (
	keyStream        = "project:%s"
	keyDirtyProjects = "memory:dirty_projects"
	keyArchiveCursor = "memory:archive_cursor"
)

// handles primary memory storage in Redis streams
type StreamStore struct {
	client *redis.Client
}

// creates a new stream store with its own Redis connection
func NewStreamStore(redisURL string) (*StreamStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")

	return &StreamStore{client: client}, nil
}

// wraps an existing Redis client
func NewStreamStoreWithClient(client *redis.Client) *StreamStore {
	return &StreamStore{client: client}
}

// returns the underlying Redis client for sharing with other components
func (s *StreamStore) Client() *redis.Client {
	return s.client
}

// closes the Redis connection
func (s *StreamStore) Close() error {
	return s.client.Close()
}

// verifies the Redis connection
func (s *StreamStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// appends an entry to the project stream and marks the project dirty for archival
func (s *StreamStore) Append(ctx context.Context, project string, data, metadata map[string]any) (Entry, error) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode data: %w", err)
	}

	if metadata == nil {
		metadata = map[string]any{}
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode metadata: %w", err)
	}

	timestamp := nowTimestamp()
	streamKey := fmt.Sprintf(keyStream, project)

	pipe := s.client.Pipeline()
	addCmd := pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]any{
			"data":      string(dataJSON),
			"metadata":  string(metadataJSON),
			"timestamp": timestamp,
		},
	})
	pipe.SAdd(ctx, keyDirtyProjects, project)

	if _, err := pipe.Exec(ctx); err != nil {
		return Entry{}, fmt.Errorf("failed to write to redis stream: %w", err)
	}

	return Entry{
		ID:        addCmd.Val(),
		Project:   project,
		Timestamp: timestamp,
		Data:      data,
		Metadata:  metadata,
	}, nil
}

// reports whether the project stream exists
func (s *StreamStore) Exists(ctx context.Context, project string) (bool, error) {
	n, err := s.client.Exists(ctx, fmt.Sprintf(keyStream, project)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check redis stream: %w", err)
	}

	return n > 0, nil
}

// reads a page of entries from the project stream with optional time bounds
func (s *StreamStore) Range(ctx context.Context, project string, opts ReadOptions) (ListResult, error) {
	streamKey := fmt.Sprintf(keyStream, project)

	start, err := streamID(opts.StartTime, "-")
	if err != nil {
		return ListResult{}, err
	}

	end, err := streamID(opts.EndTime, "+")
	if err != nil {
		return ListResult{}, err
	}

	total, err := s.client.XLen(ctx, streamKey).Result()
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to read redis stream length: %w", err)
	}

	messages, err := s.client.XRange(ctx, streamKey, start, end).Result()
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to read redis stream: %w", err)
	}

	// bounded queries report the in-range count, not the full stream length
	if opts.StartTime != "" || opts.EndTime != "" {
		total = int64(len(messages))
	}

	messages = paginate(messages, opts.Offset, opts.Limit)

	items := make([]Entry, 0, len(messages))
	for _, msg := range messages {
		items = append(items, parseStreamEntry(project, msg))
	}

	return ListResult{Items: items, Total: int(total)}, nil
}

// reads every entry in the project stream
func (s *StreamStore) All(ctx context.Context, project string) ([]Entry, error) {
	streamKey := fmt.Sprintf(keyStream, project)

	messages, err := s.client.XRange(ctx, streamKey, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read redis stream: %w", err)
	}

	items := make([]Entry, 0, len(messages))
	for _, msg := range messages {
		items = append(items, parseStreamEntry(project, msg))
	}

	return items, nil
}

// reads entries strictly after the given stream ID (all entries when empty)
func (s *StreamStore) RangeAfter(ctx context.Context, project, lastID string) ([]Entry, error) {
	streamKey := fmt.Sprintf(keyStream, project)

	start := "-"
	if lastID != "" {
		// exclusive range, requires Redis 6.2+
		start = "(" + lastID
	}

	messages, err := s.client.XRange(ctx, streamKey, start, "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read redis stream: %w", err)
	}

	items := make([]Entry, 0, len(messages))
	for _, msg := range messages {
		items = append(items, parseStreamEntry(project, msg))
	}

	return items, nil
}

// deletes the project stream along with its dirty flag and archive cursor
func (s *StreamStore) Delete(ctx context.Context, project string) (bool, error) {
	pipe := s.client.Pipeline()
	delCmd := pipe.Del(ctx, fmt.Sprintf(keyStream, project))
	pipe.SRem(ctx, keyDirtyProjects, project)
	pipe.HDel(ctx, keyArchiveCursor, project)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete redis stream: %w", err)
	}

	return delCmd.Val() > 0, nil
}

// returns the projects with writes not yet archived
func (s *StreamStore) DirtyProjects(ctx context.Context) ([]string, error) {
	projects, err := s.client.SMembers(ctx, keyDirtyProjects).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dirty projects: %w", err)
	}

	return projects, nil
}

// sets the dirty flag for a project
func (s *StreamStore) MarkDirty(ctx context.Context, project string) error {
	if err := s.client.SAdd(ctx, keyDirtyProjects, project).Err(); err != nil {
		return fmt.Errorf("failed to mark project dirty: %w", err)
	}

	return nil
}

// removes the dirty flag for a project
func (s *StreamStore) ClearDirty(ctx context.Context, project string) error {
	if err := s.client.SRem(ctx, keyDirtyProjects, project).Err(); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}

	return nil
}

// returns the last archived stream ID for a project, empty when none
func (s *StreamStore) Cursor(ctx context.Context, project string) (string, error) {
	id, err := s.client.HGet(ctx, keyArchiveCursor, project).Result()

	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to read archive cursor: %w", err)
	}

	return id, nil
}

// records the last archived stream ID for a project
func (s *StreamStore) SetCursor(ctx context.Context, project, id string) error {
	if err := s.client.HSet(ctx, keyArchiveCursor, project, id).Err(); err != nil {
		return fmt.Errorf("failed to set archive cursor: %w", err)
	}

	return nil
}

// converts an RFC3339 bound into a Redis stream ID, or the open-range default
func streamID(bound, open string) (string, error) {
	if bound == "" {
		return open, nil
	}

	t, err := time.Parse(time.RFC3339, bound)
	if err != nil {
		return "", fmt.Errorf("invalid time bound %q: %w", bound, err)
	}

	// incomplete IDs are valid range bounds: Redis fills in the sequence part
	return strconv.FormatInt(t.UnixMilli(), 10), nil
}

// applies offset/limit pagination to raw stream messages
func paginate(messages []redis.XMessage, offset, limit int) []redis.XMessage {
	if offset >= len(messages) {
		return nil
	}

	messages = messages[offset:]
	if limit > 0 && limit < len(messages) {
		messages = messages[:limit]
	}

	return messages
}

// decodes one stream message into an Entry
func parseStreamEntry(project string, msg redis.XMessage) Entry {
	entry := Entry{
		ID:      msg.ID,
		Project: project,
		Data:    map[string]any{},
	}

	if ts, ok := msg.Values["timestamp"].(string); ok {
		entry.Timestamp = ts
	}

	if raw, ok := msg.Values["data"].(string); ok {
		if err := json.Unmarshal([]byte(raw), &entry.Data); err != nil {
			logger.Warn("corrupt data field in stream entry", "project", project, "id", msg.ID)
		}
	}

	if raw, ok := msg.Values["metadata"].(string); ok && raw != "" && raw != "null" {
		metadata := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &metadata); err == nil && len(metadata) > 0 {
			entry.Metadata = metadata
		}
	}

	return entry
}
