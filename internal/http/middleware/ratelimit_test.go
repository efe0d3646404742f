package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/ai/analyze-demand", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func post(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-demand", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(2, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)

	rec := post(r, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Too many requests, please try again later"}`, rec.Body.String())
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.2").Code)

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	r := limitedRouter(NewRateLimiter(0, nil))
	for i := 0; i < 100; i++ {
		require.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	}
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	require.True(t, rl.allow("a"))
	now = now.Add(limiterIdleTTL + time.Second)
	require.True(t, rl.allow("b"))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	_, ok := rl.visitors["a"]
	assert.False(t, ok)
}
