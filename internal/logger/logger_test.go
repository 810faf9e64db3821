package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	originalLogger := log.Logger
	t.Cleanup(func() { log.Logger = originalLogger })

	log.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)
	return &buf
}

func TestInitLogger(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	var buf bytes.Buffer
	require.NoError(t, initLogger(&buf, "debug"))
	assert.Equal(t, zerolog.DebugLevel, log.Logger.GetLevel())

	log.Debug().Msg("test message")

	logStr := buf.String()
	assert.Contains(t, logStr, "time")
	assert.Contains(t, logStr, "message")
	assert.Contains(t, logStr, "test message")
}

func TestInitLogger_Defaults(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	var buf bytes.Buffer
	require.NoError(t, initLogger(&buf, ""))
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())

	assert.Error(t, initLogger(&buf, "chatty"))
}

func TestRequestLogger(t *testing.T) {
	buf := captureLogs(t)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("test response"))
	})

	handler := chimiddleware.RequestID(RequestLogger(testHandler))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/abc12", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "test response", rr.Body.String())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))

	assert.Equal(t, "Request processed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/abc12", entry["uri"])
	assert.Equal(t, float64(404), entry["status"])
	assert.Equal(t, float64(13), entry["size"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Contains(t, entry, "duration")
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	buf := captureLogs(t)

	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, float64(200), entry["status"])
}
