package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 3, Window: time.Minute},
		entries: make(map[string]*window),
	}
	now := time.Now()

	for i := 0; i < 3; i++ {
		_, allowed := rl.allow("client", now)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}
	_, allowed := rl.allow("client", now)
	assert.False(t, allowed, "request over the limit should be rejected")
}

func TestRateLimit_WindowReset(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 1, Window: time.Minute},
		entries: make(map[string]*window),
	}
	now := time.Now()

	_, allowed := rl.allow("client", now)
	require.True(t, allowed)
	_, allowed = rl.allow("client", now)
	require.False(t, allowed)

	_, allowed = rl.allow("client", now.Add(time.Minute))
	assert.True(t, allowed, "new window should reset the counter")
}

func TestRateLimit_SeparateKeys(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 1, Window: time.Minute},
		entries: make(map[string]*window),
	}
	now := time.Now()

	_, allowed := rl.allow("a", now)
	require.True(t, allowed)
	_, allowed = rl.allow("b", now)
	assert.True(t, allowed, "keys must not share windows")
}

func TestRateLimit_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mw := RateLimit(ctx, RateLimitConfig{Max: 1, Window: time.Minute})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/webhook", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
