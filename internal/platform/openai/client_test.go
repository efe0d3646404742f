package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/observability"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: url, Model: "test-model", Timeout: timeout}, nil, nil)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, nil, nil)
	require.Error(t, err)
}

func TestGenerateSendsJSONObjectRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(raw, &req))
		assert.Equal(t, "test-model", req["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])
		msgs := req["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.Equal(t, "sys", msgs[0].(map[string]any)["content"])
		assert.Equal(t, "usr", msgs[1].(map[string]any)["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"content":"{\"a\":1}"}}],"usage":{"prompt_tokens":3,"completion_tokens":2}}`))
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv.URL+"/v1/", time.Second).Generate(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   coursegen.Code
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, coursegen.CodeQuota},
		{"insufficient quota", http.StatusForbidden, `{"error":{"type":"insufficient_quota","code":"insufficient_quota"}}`, coursegen.CodeQuota},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, coursegen.CodeService},
		{"bad request", http.StatusBadRequest, `nope`, coursegen.CodeService},
		{"empty choices", http.StatusOK, `{"choices":[]}`, coursegen.CodeService},
		{"refusal", http.StatusOK, `{"choices":[{"message":{"content":"","refusal":"no"}}]}`, coursegen.CodeService},
		{"not json", http.StatusOK, `<html>`, coursegen.CodeService},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, time.Second).Generate(context.Background(), "s", "u")
			require.Error(t, err)
			assert.Equal(t, tc.want, coursegen.CodeOf(err))
			assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "must not retry")
		})
	}
}

func TestGenerateTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(t, srv.URL, 50*time.Millisecond).Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, coursegen.ErrTransport), "got %v", err)
}

func TestGenerateUnreachableIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url, time.Second).Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, coursegen.CodeTransport, coursegen.CodeOf(err))
}

func TestGenerateRecordsInjectedMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}],"usage":{"prompt_tokens":7,"completion_tokens":4}}`))
	}))
	defer srv.Close()

	metrics := observability.New()
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "test-model", Timeout: time.Second}, nil, metrics)
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "sys", "usr")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `yanxue_llm_requests_total{model="test-model",status="ok"} 1`)
	assert.Contains(t, body, `yanxue_llm_tokens_total{direction="input",model="test-model"} 7`)
	assert.Contains(t, body, `yanxue_llm_tokens_total{direction="output",model="test-model"} 4`)
}
