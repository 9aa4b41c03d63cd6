package services

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestHTTPServiceDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	svc := NewHTTPService(5*time.Second, RetryPolicy{Attempts: 1}, testLogger())

	resp, err := svc.Do(context.Background(), HTTPRequest{
		Method: http.MethodPost,
		URL:    server.URL,
		Body:   `{"x":1}`,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, resp.Body)
	assert.Equal(t, map[string]any{"ok": true}, resp.JSON)
}

func TestHTTPServiceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)

			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	svc := NewHTTPService(5*time.Second, RetryPolicy{Attempts: 3, Delay: time.Millisecond}, testLogger())

	resp, err := svc.Do(context.Background(), HTTPRequest{URL: server.URL})
	require.NoError(t, err)

	assert.Equal(t, "recovered", resp.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPServiceDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewHTTPService(5*time.Second, RetryPolicy{Attempts: 5, Delay: time.Millisecond}, testLogger())

	_, err := svc.Do(context.Background(), HTTPRequest{URL: server.URL})
	require.Error(t, err)

	httpErr := &HTTPError{}
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPServiceHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewHTTPService(5*time.Second, RetryPolicy{Attempts: 10, Delay: time.Hour}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.Do(ctx, HTTPRequest{URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
