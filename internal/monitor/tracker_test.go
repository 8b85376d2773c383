package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTracker() *Tracker {
	return NewTracker(nil, 1000, 0.8)
}

func TestBuildStatus_Levels(t *testing.T) {
	tracker := testTracker()

	tests := []struct {
		name  string
		used  int64
		level Level
	}{
		{"fresh session", 0, LevelOK},
		{"below warning", 799, LevelOK},
		{"at warning threshold", 800, LevelWarning},
		{"above warning", 950, LevelWarning},
		{"at budget", 1000, LevelHandover},
		{"over budget", 1200, LevelHandover},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tracker.buildStatus("s1", tt.used, 1)
			assert.Equal(t, tt.level, status.Level)
		})
	}
}

func TestBuildStatus_Fields(t *testing.T) {
	status := testTracker().buildStatus("s1", 400, 3)

	assert.Equal(t, "s1", status.Session)
	assert.Equal(t, int64(400), status.Used)
	assert.Equal(t, 1000, status.Max)
	assert.Equal(t, int64(600), status.Remaining)
	assert.InDelta(t, 0.4, status.Utilization, 0.0001)
	assert.Equal(t, int64(3), status.Requests)
	assert.InDelta(t, 0.8, status.Thresholds.Warning, 0.0001)
	assert.InDelta(t, 1.0, status.Thresholds.Handover, 0.0001)
}

func TestBuildStatus_RemainingNeverNegative(t *testing.T) {
	status := testTracker().buildStatus("s1", 5000, 1)

	assert.Equal(t, int64(0), status.Remaining)
}

func TestLevelRank_Ordering(t *testing.T) {
	assert.Less(t, levelRank(LevelOK), levelRank(LevelWarning))
	assert.Less(t, levelRank(LevelWarning), levelRank(LevelHandover))
	assert.Equal(t, 0, levelRank(Level("")))
}

func TestParseCounts(t *testing.T) {
	counts := parseCounts(map[string]string{
		"claude-sonnet:input":  "1000",
		"claude-sonnet:output": "250",
		"gpt-4o:input":         "400",
		"malformed":            "7",
		"gpt-4o:sideways":      "9",
	})

	assert.Len(t, counts, 2)
	assert.Equal(t, int64(1000), counts["claude-sonnet"].Input)
	assert.Equal(t, int64(250), counts["claude-sonnet"].Output)
	assert.Equal(t, int64(1250), counts["claude-sonnet"].Total)
	assert.Equal(t, int64(400), counts["gpt-4o"].Input)
	assert.Equal(t, int64(400), counts["gpt-4o"].Total)
}

func TestParseCounts_ModelNamesWithColons(t *testing.T) {
	counts := parseCounts(map[string]string{
		"anthropic:claude-3:input": "10",
	})

	assert.Equal(t, int64(10), counts["anthropic:claude-3"].Input)
}

func TestParseInt64(t *testing.T) {
	assert.Equal(t, int64(42), parseInt64("42"))
	assert.Equal(t, int64(0), parseInt64(""))
	assert.Equal(t, int64(0), parseInt64("nope"))
}
