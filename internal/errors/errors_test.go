package errors

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestIsValidProject(t *testing.T) {
	tests := []struct {
		name    string
		project string
		want    bool
	}{
		{"simple", "myproject", true},
		{"mixed case with digits", "Proj42", true},
		{"empty", "", false},
		{"hyphenated", "my-project", false},
		{"path traversal", "../etc", false},
		{"whitespace", "my project", false},
		{"redis key injection", "a:b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidProject(tt.project))
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{"redis nil", redis.Nil, CategoryNotFound},
		{"sql no rows", sql.ErrNoRows, CategoryNotFound},
		{"deadline", context.DeadlineExceeded, CategoryTimeout},
		{"canceled", context.Canceled, CategoryTimeout},
		{"wrapped redis", fmt.Errorf("failed to write to redis stream: boom"), CategoryStorage},
		{"sqlite", fmt.Errorf("sqlite: database is locked"), CategoryStorage},
		{"dial", fmt.Errorf("dial tcp 127.0.0.1:6379: refused"), CategoryNetwork},
		{"validation", fmt.Errorf("binding failed for field data"), CategoryValidation},
		{"unknown", fmt.Errorf("mystery"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, classifyError(tt.err).category)
		})
	}
}

func TestClassifyError_SanitizesInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	info := classifyError(fmt.Errorf("redis stream write failed: secret-host:6379"))

	assert.Equal(t, "storage operation failed", info.sanitized)
}

func TestClassifyError_VerboseInDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	info := classifyError(fmt.Errorf("redis stream write failed"))

	assert.Equal(t, "redis stream write failed", info.sanitized)
}
