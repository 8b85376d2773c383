package helicone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	requestQueryPath = "/v1/request/query"
	defaultPageSize  = 500
)

// shared HTTP client for Helicone API calls
var heliconeHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// rate limiter for Helicone API calls (10 requests/second with burst capacity of 5)
var heliconeRateLimiter = rate.NewLimiter(10, 5)

type Config struct {
	BaseURL string
	APIKey  string // optional for self-hosted deployments
}

// queries the Helicone proxy for request cost data
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) *Client {
	return &Client{
		config:     config,
		httpClient: heliconeHTTPClient,
	}
}

type queryRequest struct {
	Filter queryFilter `json:"filter"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

type queryFilter struct {
	CreatedAfter string `json:"created_after,omitempty"`
}

type queryResponse struct {
	Data []requestRow `json:"data"`
}

type requestRow struct {
	ID          string  `json:"id"`
	Model       string  `json:"model"`
	CostUSD     float64 `json:"cost_usd"`
	TotalTokens int     `json:"total_tokens"`
	CreatedAt   string  `json:"created_at"`
}

// reports whether the Helicone endpoint is reachable; any HTTP response counts
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("failed to create helicone request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("helicone unreachable: %w", err)
	}

	resp.Body.Close() //nolint:errcheck,gosec // reachability check only

	return nil
}

// returns the summed request cost recorded by Helicone since the given time,
// paging through results, and the creation time of the newest row seen
func (c *Client) CostSince(ctx context.Context, since time.Time) (float64, time.Time, error) {
	var total float64
	var newest time.Time
	offset := 0

	for {
		rows, err := c.queryPage(ctx, since, offset)
		if err != nil {
			return 0, time.Time{}, err
		}

		for _, row := range rows {
			total += row.CostUSD

			if created, parseErr := time.Parse(time.RFC3339, row.CreatedAt); parseErr == nil && created.After(newest) {
				newest = created
			}
		}

		// a short page means the results are exhausted
		if len(rows) < defaultPageSize {
			return total, newest, nil
		}

		offset += len(rows)
	}
}

func (c *Client) queryPage(ctx context.Context, since time.Time, offset int) ([]requestRow, error) {
	if err := heliconeRateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	body, err := json.Marshal(queryRequest{
		Filter: queryFilter{CreatedAfter: since.UTC().Format(time.RFC3339)},
		Limit:  defaultPageSize,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode helicone query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+requestQueryPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create helicone request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("helicone request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best-effort error detail
		return nil, fmt.Errorf("helicone returned status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode helicone response: %w", err)
	}

	return parsed.Data, nil
}
