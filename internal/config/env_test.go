package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadEnvironmentVariables_Defaults(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("ENVIRONMENT")       //nolint:errcheck // test cleanup
	os.Unsetenv("SQLITE_DB_PATH")    //nolint:errcheck // test cleanup
	os.Unsetenv("MEMORY_API_KEY")    //nolint:errcheck // test cleanup
	os.Unsetenv("MAX_CONTEXT_SIZE")  //nolint:errcheck // test cleanup
	os.Unsetenv("WARNING_THRESHOLD") //nolint:errcheck // test cleanup

	cfg, err := LoadEnvironmentVariables()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, defaultSQLitePath, cfg.SQLitePath)
	assert.Equal(t, devAPIKey, cfg.APIKey)
	assert.Equal(t, defaultMaxContextSize, cfg.MaxContextSize)
	assert.InDelta(t, defaultWarningThreshold, cfg.WarningThreshold, 0.0001)
}

func TestLoadEnvironmentVariables_MissingRedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	_, err := LoadEnvironmentVariables()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoadEnvironmentVariables_ProductionRequiresAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MEMORY_API_KEY", "")

	_, err := LoadEnvironmentVariables()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEMORY_API_KEY")
}

func TestLoadEnvironmentVariables_Thresholds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_CONTEXT_SIZE", "200000")
	t.Setenv("WARNING_THRESHOLD", "0.9")

	cfg, err := LoadEnvironmentVariables()

	require.NoError(t, err)
	assert.Equal(t, 200000, cfg.MaxContextSize)
	assert.InDelta(t, 0.9, cfg.WarningThreshold, 0.0001)
}

func TestLoadEnvironmentVariables_InvalidThresholds(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric max", "MAX_CONTEXT_SIZE", "lots"},
		{"zero max", "MAX_CONTEXT_SIZE", "0"},
		{"negative max", "MAX_CONTEXT_SIZE", "-1"},
		{"non-numeric threshold", "WARNING_THRESHOLD", "soon"},
		{"zero threshold", "WARNING_THRESHOLD", "0"},
		{"threshold above one", "WARNING_THRESHOLD", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadEnvironmentVariables()
			assert.Error(t, err)
		})
	}
}
