package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietmind/recall/internal/observability"
	"github.com/quietmind/recall/pkg/memory"
)

// newTestHandler builds the full middleware-wrapped handler over a degraded
// (in-memory) service, so tests run without a database.
func newTestHandler(t *testing.T) (http.Handler, *Server) {
	t.Helper()
	for _, name := range []string{"DATABASE_URL", "RECALL_DATABASE_URL", "POSTGRES_URL", "PG_CONNECTION_STRING"} {
		t.Setenv(name, "")
	}

	svc, err := memory.NewService(context.Background(), memory.ServiceConfig{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	srv, err := New(Options{}, svc, zerolog.Nop())
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/memory/store", srv.guarded(srv.handleStore))
	mux.HandleFunc("/v1/memory/retrieve", srv.guarded(srv.handleRetrieve))
	mux.HandleFunc("/v1/memory/stats", srv.guarded(srv.handleStats))
	mux.HandleFunc("/health", srv.handleHealth)
	mux.Handle("/metrics", observability.MetricsHandler())

	return withLogging(zerolog.Nop(), withCORS(withRequestID(mux))), srv
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStoreEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(t, handler, "/v1/memory/store", storeRequest{
		UserID:  "u1",
		Content: "my boss moved the project deadline",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp storeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "work_career", resp.Category)
	assert.True(t, resp.Degraded)
}

func TestStoreEndpointValidation(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(t, handler, "/v1/memory/store", storeRequest{UserID: "", Content: "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp storeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestStoreEndpointRejectsBadJSON(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/memory/store", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreEndpointMethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/memory/store", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRetrieveEndpointRoundtrip(t *testing.T) {
	handler, _ := newTestHandler(t)

	postJSON(t, handler, "/v1/memory/store", storeRequest{
		UserID:  "u1",
		Content: "my boss moved the project deadline to friday",
	})

	rec := postJSON(t, handler, "/v1/memory/retrieve", retrieveRequest{
		UserID: "u1",
		Query:  "what did my boss say about the deadline",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp retrieveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.ContextFound)
	assert.Contains(t, resp.Memories, "project deadline")
	assert.Equal(t, 1, resp.MemoryCount)
	assert.True(t, resp.Degraded)
}

func TestRetrieveEndpointNoContext(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postJSON(t, handler, "/v1/memory/retrieve", retrieveRequest{
		UserID: "nobody",
		Query:  "anything at all",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp retrieveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.ContextFound)
	assert.Empty(t, resp.Memories)
}

func TestStatsEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	postJSON(t, handler, "/v1/memory/store", storeRequest{
		UserID:  "u1",
		Content: "my boss moved the deadline",
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/memory/stats?user_id=u1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Categories["work_career"])
}

func TestStatsEndpointRequiresUser(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/memory/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpointDegraded(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.True(t, resp.Degraded)
	assert.Nil(t, resp.Pool)
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memory_degraded_mode")
}

func TestRequestIDAssigned(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDEchoed(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-id-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-id-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/memory/store", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestShutdownRejectsNewRequests(t *testing.T) {
	handler, srv := newTestHandler(t)

	srv.shutdownMu.Lock()
	srv.isShuttingDown = true
	srv.shutdownMu.Unlock()

	rec := postJSON(t, handler, "/v1/memory/store", storeRequest{UserID: "u1", Content: "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
