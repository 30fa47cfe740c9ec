package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/ssargent/databin/pkg/codec"
	"github.com/ssargent/databin/pkg/dump"
	"github.com/ssargent/databin/pkg/metrics"
	"github.com/ssargent/databin/pkg/storage"
	"github.com/ssargent/databin/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer creates a test server backed by a temporary pebble store
func setupTestServer(t *testing.T, config ServerConfig) http.Handler {
	t.Helper()

	store, err := storage.NewDefaultStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg := prometheus.NewRegistry()
	server := NewServer(store, config, metrics.NewMetrics(reg), dump.DefaultOptions(), zerolog.Nop())
	return server.Router(reg)
}

func sampleStream(t *testing.T) []byte {
	t.Helper()

	s := stream.NewBufferStream(nil)
	c := codec.New(s)
	require.NoError(t, c.OpenContainer(1))
	require.NoError(t, c.AppendU16(2, 80))
	require.NoError(t, c.AppendText(3, "edge"))
	require.NoError(t, c.CloseContainer())
	return s.Bytes()
}

func do(t *testing.T, h http.Handler, method, path string, body []byte, apiKey string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeStream(t *testing.T, rec *httptest.ResponseRecorder) StreamResponse {
	t.Helper()

	var resp struct {
		Success bool           `json:"success"`
		Data    StreamResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestServer_StreamLifecycle(t *testing.T) {
	h := setupTestServer(t, ServerConfig{})
	data := sampleStream(t)

	rec := do(t, h, http.MethodPut, "/api/v1/streams", data, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeStream(t, rec)
	assert.Equal(t, len(data), created.Size)
	assert.Equal(t, 4, created.Records)
	assert.Equal(t, 1, created.MaxDepth)

	rec = do(t, h, http.MethodGet, "/api/v1/streams/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, data, rec.Body.Bytes())

	rec = do(t, h, http.MethodGet, "/api/v1/streams/"+created.ID+"/dump", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	want := "" +
		"  1: container:\n" +
		"    2:       u16: 80 (0x50)\n" +
		"    3:    string: edge\n"
	assert.Equal(t, want, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/streams", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)

	rec = do(t, h, http.MethodDelete, "/api/v1/streams/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/streams/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/streams/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RejectsInvalidStreams(t *testing.T) {
	data := sampleStream(t)

	testCases := []struct {
		name   string
		config ServerConfig
		body   []byte
		status int
	}{
		{"truncated", ServerConfig{}, data[:len(data)-2], http.StatusUnprocessableEntity},
		{"malformed tag", ServerConfig{}, []byte{'#', 0, 0}, http.StatusUnprocessableEntity},
		{"unbalanced in strict mode", ServerConfig{Strict: true}, data[:len(data)-3], http.StatusUnprocessableEntity},
		{"unbalanced in lenient mode", ServerConfig{}, data[:len(data)-3], http.StatusCreated},
		{"too large", ServerConfig{MaxUploadBytes: 4}, data, http.StatusRequestEntityTooLarge},
		{"empty stream", ServerConfig{}, []byte{}, http.StatusCreated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := setupTestServer(t, tc.config)
			rec := do(t, h, http.MethodPut, "/api/v1/streams", tc.body, "")
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_BadIDs(t *testing.T) {
	h := setupTestServer(t, ServerConfig{})

	rec := do(t, h, http.MethodGet, "/api/v1/streams/not-a-ksuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/streams/2SwmKiBKPSMZHVK4ugMyHrZSdBa/dump", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_APIKey(t *testing.T) {
	h := setupTestServer(t, ServerConfig{APIKey: "secret"})

	rec := do(t, h, http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing X-API-Key")

	rec = do(t, h, http.MethodGet, "/api/v1/health", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/health", nil, "secret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	// metrics stay reachable for scrapers
	rec = do(t, h, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	h := setupTestServer(t, ServerConfig{})

	rec := do(t, h, http.MethodPut, "/api/v1/streams", sampleStream(t), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `databin_records_total{direction="read",tag="string"} 1`), body)
	assert.Contains(t, body, `databin_stream_operations_total{operation="put",status="success"} 1`)
	assert.Contains(t, body, "databin_http_requests_total")
}

func TestServer_CORS(t *testing.T) {
	h := setupTestServer(t, ServerConfig{AllowedOrigins: []string{"https://tools.example"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://tools.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://tools.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
