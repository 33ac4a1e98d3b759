// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Query string `json:"query"`
}

type echoResponse struct {
	Echo string `json:"echo"`
}

func TestPostJSON_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "k-123", r.Header.Get("x-api-key"))

		var in echoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(echoResponse{Echo: in.Query})
	}))
	defer ts.Close()

	var out echoResponse
	err := PostJSON(context.Background(), ts.Client(), "test", ts.URL,
		map[string]string{"x-api-key": "k-123"}, echoRequest{Query: "hello"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Echo)
}

func TestPostJSON_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantAuth bool
	}{
		{"unauthorized", http.StatusUnauthorized, true},
		{"forbidden", http.StatusForbidden, true},
		{"rate limited", http.StatusTooManyRequests, false},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer ts.Close()

			err := PostJSON(context.Background(), ts.Client(), "svc", ts.URL, nil, echoRequest{}, &echoResponse{})
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Contains(t, se.Error(), `{"error":"nope"}`)
			assert.Equal(t, tt.wantAuth, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestPostJSON_NoRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	err := PostJSON(context.Background(), ts.Client(), "svc", ts.URL, nil, echoRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostJSON_ErrorBodyTruncated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer ts.Close()

	err := PostJSON(context.Background(), ts.Client(), "svc", ts.URL, nil, echoRequest{}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Len(t, se.Body, maxErrorBody)
}

func TestPostJSON_BadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	err := PostJSON(context.Background(), ts.Client(), "svc", ts.URL, nil, echoRequest{}, &echoResponse{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding svc response")
}

func TestPostJSON_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PostJSON(ctx, ts.Client(), "svc", ts.URL, nil, echoRequest{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
