package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "loaded": true, "uptime_s": 12.5})
	}))
	defer srv.Close()

	h, err := New(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Loaded)
	assert.Equal(t, "healthy", h.Status)
}

func TestClient_TranscribeSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transcribe/sync", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dQw4w9WgXcQ", body["source"])
		assert.Equal(t, float64(30), body["timeout_s"])

		json.NewEncoder(w).Encode(map[string]any{
			"job_id": "abc", "status": "done", "text": "hello world",
		})
	}))
	defer srv.Close()

	res, err := New(srv.URL).TranscribeSync(context.Background(), "dQw4w9WgXcQ", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
}

func TestClient_SyncTimeoutCarriesJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		json.NewEncoder(w).Encode(map[string]any{
			"code": "request_timeout", "message": "transcription still running", "job_id": "abc",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).TranscribeSync(context.Background(), "dQw4w9WgXcQ", time.Second)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusGatewayTimeout, apiErr.StatusCode)
	assert.Equal(t, "request_timeout", apiErr.Code)
	assert.Equal(t, "abc", apiErr.JobID)
}

func TestClient_PollResultUntilDone(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "running"
		if calls.Add(1) >= 3 {
			status = "done"
		}
		json.NewEncoder(w).Encode(map[string]any{"job_id": "abc", "status": status, "text": "done text"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithPollInterval(10*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.PollResult(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "done", res.Status)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"code": "not_found", "message": "no such job"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Result(context.Background(), "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not_found", apiErr.Code)
}
