package waitlist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tablenotify/internal/common/errors"
	"tablenotify/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func advisorConfig(baseURL string) Config {
	return Config{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxRetries:  2,
		MaxTokens:   1024,
		Temperature: 0.2,
	}
}

func sampleRequest() Request {
	return Request{
		Bookings: json.RawMessage(`[{"guest":"Ana","time":"19:00","partySize":2}]`),
		Tables:   json.RawMessage(`[{"id":"t1","seats":4}]`),
		Schedule: json.RawMessage(`{"open":"17:00","close":"23:00"}`),
	}
}

func TestOptimize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		prompt, _ := payload["prompt"].(string)
		assert.Contains(t, prompt, "seating advisor")
		assert.Contains(t, prompt, `"guest":"Ana"`)

		_, _ = w.Write([]byte(`{"suggestions":[{"table":"t1","party":"Ana"}],"summary":"Seat Ana at t1","confidence":0.9}`))
	}))
	defer server.Close()

	a := NewAdvisor(advisorConfig(server.URL), logger.NewNoOpLogger())
	advice, err := a.Optimize(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.Equal(t, "Seat Ana at t1", advice.Summary)
	assert.Equal(t, 0.9, advice.Confidence)
	assert.JSONEq(t, `[{"table":"t1","party":"Ana"}]`, string(advice.Suggestions))
}

func TestOptimize_RetriesOnServerError(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"summary":"Second try","confidence":0.7}`))
	}))
	defer server.Close()

	a := NewAdvisor(advisorConfig(server.URL), logger.NewNoOpLogger())
	advice, err := a.Optimize(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.Equal(t, "Second try", advice.Summary)
	assert.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

func TestOptimize_ExhaustedRetriesFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	a := NewAdvisor(advisorConfig(server.URL), logger.NewNoOpLogger())
	_, err := a.Optimize(context.Background(), sampleRequest())

	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeAdvisorFailed, stdErr.Code)
}

func TestOptimize_TimeoutMapsToAdvisorTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"summary":"too late","confidence":0.5}`))
	}))
	defer server.Close()

	cfg := advisorConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	a := NewAdvisor(cfg, logger.NewNoOpLogger())

	_, err := a.Optimize(context.Background(), sampleRequest())

	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeAdvisorTimeout, stdErr.Code)
}

func TestOptimize_EmptySummaryDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":"   ","confidence":0.9}`))
	}))
	defer server.Close()

	a := NewAdvisor(advisorConfig(server.URL), logger.NewNoOpLogger())
	advice, err := a.Optimize(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.Contains(t, advice.Summary, "no usable suggestion")
	assert.Equal(t, 0.1, advice.Confidence)
}

func TestOptimize_OutOfRangeConfidenceClamped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":"ok","confidence":42.0}`))
	}))
	defer server.Close()

	a := NewAdvisor(advisorConfig(server.URL), logger.NewNoOpLogger())
	advice, err := a.Optimize(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.Equal(t, 0.5, advice.Confidence)
}

func TestOptimize_MissingBaseURLIsConfigurationError(t *testing.T) {
	a := NewAdvisor(Config{Timeout: time.Second}, logger.NewNoOpLogger())

	_, err := a.Optimize(context.Background(), sampleRequest())

	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeConfigurationError, stdErr.Code)
}
