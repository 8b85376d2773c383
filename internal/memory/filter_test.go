package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleEntries() []Entry {
	return []Entry{
		{
			ID:      "1-0",
			Project: "demo",
			Data:    map[string]any{"task": "refactor parser", "priority": float64(2)},
		},
		{
			ID:       "2-0",
			Project:  "demo",
			Data:     map[string]any{"task": "write tests"},
			Metadata: map[string]any{"author": "ada", "priority": float64(1)},
		},
		{
			ID:      "3-0",
			Project: "demo",
			Data:    map[string]any{"note": "Parser edge case with unicode"},
		},
	}
}

func TestFilterEntries_SubstringMatch(t *testing.T) {
	matched := filterEntries(sampleEntries(), "parser", nil)

	assert.Len(t, matched, 2)
	assert.Equal(t, "1-0", matched[0].ID)
	assert.Equal(t, "3-0", matched[1].ID)
}

func TestFilterEntries_CaseInsensitive(t *testing.T) {
	matched := filterEntries(sampleEntries(), "PARSER", nil)

	assert.Len(t, matched, 2)
}

func TestFilterEntries_EmptyQueryMatchesAll(t *testing.T) {
	matched := filterEntries(sampleEntries(), "", nil)

	assert.Len(t, matched, 3)
}

func TestFilterEntries_SearchesMetadata(t *testing.T) {
	matched := filterEntries(sampleEntries(), "ada", nil)

	assert.Len(t, matched, 1)
	assert.Equal(t, "2-0", matched[0].ID)
}

func TestFilterEntries_DataFilter(t *testing.T) {
	matched := filterEntries(sampleEntries(), "", map[string]any{"priority": float64(2)})

	assert.Len(t, matched, 1)
	assert.Equal(t, "1-0", matched[0].ID)
}

func TestFilterEntries_MetadataFilter(t *testing.T) {
	matched := filterEntries(sampleEntries(), "", map[string]any{"author": "ada"})

	assert.Len(t, matched, 1)
	assert.Equal(t, "2-0", matched[0].ID)
}

func TestFilterEntries_FilterMismatch(t *testing.T) {
	matched := filterEntries(sampleEntries(), "", map[string]any{"author": "grace"})

	assert.Empty(t, matched)
}

func TestFilterEntries_AbsentFilterKeyFails(t *testing.T) {
	matched := filterEntries(sampleEntries(), "", map[string]any{"missing": "x"})

	assert.Empty(t, matched)
}

func TestFilterEntries_QueryAndFilterCombined(t *testing.T) {
	matched := filterEntries(sampleEntries(), "tests", map[string]any{"priority": float64(1)})

	assert.Len(t, matched, 1)
	assert.Equal(t, "2-0", matched[0].ID)
}

func TestJSONEqual_NumericRepresentations(t *testing.T) {
	// decoded JSON numbers arrive as float64; stored values may be int
	assert.True(t, jsonEqual(float64(2), 2))
	assert.True(t, jsonEqual("a", "a"))
	assert.False(t, jsonEqual(float64(2), 3))
	assert.False(t, jsonEqual("2", 2))
}

func TestPaginateEntries(t *testing.T) {
	entries := sampleEntries()

	page := paginateEntries(entries, 1, 1)
	assert.Len(t, page, 1)
	assert.Equal(t, "2-0", page[0].ID)

	assert.Empty(t, paginateEntries(entries, 10, 5))
	assert.Len(t, paginateEntries(entries, 0, 0), 3) // zero limit means no cap
}
