package memory

import (
	"bytes"
	"encoding/json"
	"strings"
)

// returns the entries whose serialized data or metadata contains the query
// (case-insensitive) and which satisfy every equality filter
func filterEntries(entries []Entry, query string, filters map[string]any) []Entry {
	queryLower := strings.ToLower(query)
	matched := []Entry{}

	for _, entry := range entries {
		if !containsQuery(entry, queryLower) {
			continue
		}

		if matchesFilters(entry, filters) {
			matched = append(matched, entry)
		}
	}

	return matched
}

func containsQuery(entry Entry, queryLower string) bool {
	if queryLower == "" {
		return true
	}

	dataJSON, _ := json.Marshal(entry.Data)         //nolint:errcheck // values round-trip from JSON
	metadataJSON, _ := json.Marshal(entry.Metadata) //nolint:errcheck // values round-trip from JSON

	return strings.Contains(strings.ToLower(string(dataJSON)), queryLower) ||
		strings.Contains(strings.ToLower(string(metadataJSON)), queryLower)
}

// every filter key must match in data or metadata; a key absent from both fails
func matchesFilters(entry Entry, filters map[string]any) bool {
	for key, want := range filters {
		if got, ok := entry.Data[key]; ok {
			if !jsonEqual(got, want) {
				return false
			}
			continue
		}

		if got, ok := entry.Metadata[key]; ok {
			if !jsonEqual(got, want) {
				return false
			}
			continue
		}

		return false
	}

	return true
}

// compares values by their JSON encodings; avoids float64-vs-int mismatches
// between decoded request bodies and stored entries
func jsonEqual(a, b any) bool {
	aJSON, errA := json.Marshal(a)
	bJSON, errB := json.Marshal(b)

	if errA != nil || errB != nil {
		return false
	}

	return bytes.Equal(aJSON, bJSON)
}
