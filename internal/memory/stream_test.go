package memory

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamID_OpenBounds(t *testing.T) {
	start, err := streamID("", "-")
	require.NoError(t, err)
	assert.Equal(t, "-", start)

	end, err := streamID("", "+")
	require.NoError(t, err)
	assert.Equal(t, "+", end)
}

func TestStreamID_ConvertsRFC3339(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	id, err := streamID(ts.Format(time.RFC3339), "-")

	require.NoError(t, err)
	assert.Equal(t, "1748779200000", id)
}

func TestStreamID_RejectsGarbage(t *testing.T) {
	_, err := streamID("yesterday", "-")

	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	messages := []redis.XMessage{{ID: "1-0"}, {ID: "2-0"}, {ID: "3-0"}}

	page := paginate(messages, 1, 1)
	require.Len(t, page, 1)
	assert.Equal(t, "2-0", page[0].ID)

	assert.Nil(t, paginate(messages, 5, 1))
	assert.Len(t, paginate(messages, 0, 0), 3)
	assert.Len(t, paginate(messages, 0, 10), 3)
}

func TestParseStreamEntry(t *testing.T) {
	msg := redis.XMessage{
		ID: "1748779200000-0",
		Values: map[string]any{
			"data":      `{"task":"write tests"}`,
			"metadata":  `{"author":"ada"}`,
			"timestamp": "2025-06-01T12:00:00.000000Z",
		},
	}

	entry := parseStreamEntry("demo", msg)

	assert.Equal(t, "1748779200000-0", entry.ID)
	assert.Equal(t, "demo", entry.Project)
	assert.Equal(t, "2025-06-01T12:00:00.000000Z", entry.Timestamp)
	assert.Equal(t, "write tests", entry.Data["task"])
	assert.Equal(t, "ada", entry.Metadata["author"])
}

func TestParseStreamEntry_EmptyMetadata(t *testing.T) {
	msg := redis.XMessage{
		ID: "1-0",
		Values: map[string]any{
			"data":     `{"k":"v"}`,
			"metadata": `{}`,
		},
	}

	entry := parseStreamEntry("demo", msg)

	assert.Nil(t, entry.Metadata)
}

func TestParseStreamEntry_CorruptData(t *testing.T) {
	msg := redis.XMessage{
		ID:     "1-0",
		Values: map[string]any{"data": `not json`},
	}

	entry := parseStreamEntry("demo", msg)

	assert.Empty(t, entry.Data)
	assert.Equal(t, "1-0", entry.ID)
}
