package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskdeck-api/internal/cache"
)

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

// downCache fails its Ping, modeling an unreachable Redis.
type downCache struct {
	cache.Cache
}

func (downCache) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func checkHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Check(w, req)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealthCheckAllUp(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler(fakePinger{}, cache.NewMemoryCache(), testLogger())

	code, resp := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, HealthResponse{Status: "ok", Database: "up", Cache: "up"}, resp)
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler(
		fakePinger{err: errors.New("connection refused")},
		cache.NewMemoryCache(),
		testLogger(),
	)

	code, resp := checkHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "down", resp.Database)
}

func TestHealthCheckCacheDownIsDegradedNotFailed(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler(fakePinger{}, downCache{cache.NewMemoryCache()}, testLogger())

	code, resp := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code, "a cache outage must not fail the health check")
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Cache)
	assert.Equal(t, "up", resp.Database)
}

func TestHealthCheckRespondsQuickly(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler(fakePinger{}, cache.NewMemoryCache(), testLogger())

	start := time.Now()
	code, _ := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Less(t, time.Since(start), healthCheckTimeout)
}
