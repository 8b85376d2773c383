package monitor

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/k3ss/backend/internal/monitor"
)

// binding failures are rejected before the tracker is touched,
// so a disconnected tracker is enough for these tests
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	tracker := monitor.NewTracker(nil, 128000, 0.8)
	counter := monitor.NewTokenCounter()

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), tracker, counter)

	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body) //nolint:errcheck,gosec // test helper
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestRecordUsageHandler_MissingModel(t *testing.T) {
	router := newTestRouter()

	w := postJSON(router, "/api/v1/context/sess1/usage", map[string]any{
		"provider":     "anthropic",
		"input_tokens": 100,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestRecordUsageHandler_MissingProvider(t *testing.T) {
	router := newTestRouter()

	w := postJSON(router, "/api/v1/context/sess1/usage", map[string]any{
		"model":        "claude-sonnet-4",
		"input_tokens": 100,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordUsageHandler_NegativeTokens(t *testing.T) {
	router := newTestRouter()

	w := postJSON(router, "/api/v1/context/sess1/usage", map[string]any{
		"model":        "claude-sonnet-4",
		"provider":     "anthropic",
		"input_tokens": -5,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimateHandler_MissingText(t *testing.T) {
	router := newTestRouter()

	w := postJSON(router, "/api/v1/context/sess1/estimate", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordUsageHandler_MalformedJSON(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/context/sess1/usage", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
