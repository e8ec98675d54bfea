package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLimiter struct {
	allowed   bool
	remaining int
	keys      []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.remaining, nil
}

func (f *fakeLimiter) Limit() int            { return 30 }
func (f *fakeLimiter) Window() time.Duration { return time.Minute }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_Allowed(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{allowed: true, remaining: 29}
	m := NewRateLimitMiddleware(limiter, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	m.Handler(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "29", rec.Header().Get("X-RateLimit-Remaining"))
	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "203.0.113.9", limiter.keys[0])
}

func TestRateLimit_Rejected(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{allowed: false, remaining: 0}
	m := NewRateLimitMiddleware(limiter, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/", nil)
	m.Handler(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too many requests")
}

func TestRateLimit_SkipsProbePaths(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{allowed: false}
	m := NewRateLimitMiddleware(limiter, zap.NewNop())

	rec := httptest.NewRecorder()
	m.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, limiter.keys)
}

func TestRateLimit_ForwardedForTakesPrecedence(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{allowed: true, remaining: 1}
	m := NewRateLimitMiddleware(limiter, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	m.Handler(okHandler()).ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "198.51.100.7", limiter.keys[0])
}
