package helicone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CostSince(t *testing.T) {
	var gotAuth string
	var gotFilter queryFilter

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, requestQueryPath, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotFilter = req.Filter

		json.NewEncoder(w).Encode(queryResponse{ //nolint:errcheck,gosec // test server
			Data: []requestRow{
				{ID: "r1", Model: "claude-sonnet", CostUSD: 0.012, CreatedAt: "2025-06-01T10:00:00Z"},
				{ID: "r2", Model: "gpt-4o", CostUSD: 0.03, CreatedAt: "2025-06-01T10:05:00Z"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "hk-test"})
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cost, newest, err := client.CostSince(context.Background(), since)

	require.NoError(t, err)
	assert.InDelta(t, 0.042, cost, 0.00001)
	assert.Equal(t, "Bearer hk-test", gotAuth)
	assert.Equal(t, "2025-06-01T00:00:00Z", gotFilter.CreatedAfter)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC), newest)
}

func TestClient_CostSince_PagesThroughResults(t *testing.T) {
	var gotOffsets []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotOffsets = append(gotOffsets, req.Offset)

		// first page is full, second is short
		rows := make([]requestRow, 0, defaultPageSize)
		if req.Offset == 0 {
			for range defaultPageSize {
				rows = append(rows, requestRow{CostUSD: 0.01})
			}
		} else {
			rows = append(rows, requestRow{CostUSD: 0.01})
		}

		json.NewEncoder(w).Encode(queryResponse{Data: rows}) //nolint:errcheck,gosec // test server
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	cost, _, err := client.CostSince(context.Background(), time.Now())

	require.NoError(t, err)
	assert.InDelta(t, float64(defaultPageSize+1)*0.01, cost, 0.00001)
	assert.Equal(t, []int{0, defaultPageSize}, gotOffsets)
}

func TestClient_CostSince_NoAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(queryResponse{}) //nolint:errcheck,gosec // test server
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	cost, newest, err := client.CostSince(context.Background(), time.Now())

	require.NoError(t, err)
	assert.Zero(t, cost)
	assert.True(t, newest.IsZero())
}

func TestClient_CostSince_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, _, err := client.CostSince(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

// sink recording AddCost calls
type fakeSink struct {
	total float64
}

func (f *fakeSink) AddCost(_ context.Context, amount float64) error {
	f.total += amount
	return nil
}

func TestPoller_FoldsCostsIntoSink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(queryResponse{ //nolint:errcheck,gosec // test server
			Data: []requestRow{{ID: "r1", CostUSD: 0.5}},
		})
	}))
	defer server.Close()

	sink := &fakeSink{}
	poller := NewPoller(NewClient(Config{BaseURL: server.URL}), sink, time.Minute)

	poller.poll()

	assert.InDelta(t, 0.5, sink.total, 0.00001)
}

func TestPoller_WindowAdvancesToNewestRow(t *testing.T) {
	rowTime := time.Now().Add(10 * time.Second).UTC().Truncate(time.Second)

	// the row is created while the poll request is in flight
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(queryResponse{ //nolint:errcheck,gosec // test server
			Data: []requestRow{{ID: "r1", CostUSD: 0.2, CreatedAt: rowTime.Format(time.RFC3339)}},
		})
	}))
	defer server.Close()

	sink := &fakeSink{}
	poller := NewPoller(NewClient(Config{BaseURL: server.URL}), sink, time.Minute)

	poller.poll()

	// the next window starts at the row, so it is not summed twice
	assert.True(t, poller.lastPoll.Equal(rowTime))
	assert.InDelta(t, 0.2, sink.total, 0.00001)
}

func TestPoller_ErrorKeepsWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := &fakeSink{}
	poller := NewPoller(NewClient(Config{BaseURL: server.URL}), sink, time.Minute)
	before := poller.lastPoll

	poller.poll()

	assert.Zero(t, sink.total)
	assert.Equal(t, before, poller.lastPoll)
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	assert.NoError(t, client.Ping(context.Background()))
}

func TestClient_PingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	assert.Error(t, client.Ping(context.Background()))
}
