package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

// RequestLimiter is the throttling contract the middleware depends on,
// satisfied by the Redis fixed-window limiter.
type RequestLimiter interface {
	Allow(ctx context.Context, key string) (bool, int, error)
	Limit() int
	Window() time.Duration
}

// RateLimitMiddleware throttles requests per client IP.
type RateLimitMiddleware struct {
	limiter   RequestLimiter
	logger    *zap.Logger
	metrics   *prometheus.Metrics
	skipPaths map[string]struct{}
}

// RateLimitOption customises a RateLimitMiddleware.
type RateLimitOption func(*RateLimitMiddleware)

// WithRateLimitMetrics attaches rejection metrics.
func WithRateLimitMetrics(metrics *prometheus.Metrics) RateLimitOption {
	return func(m *RateLimitMiddleware) { m.metrics = metrics }
}

// WithRateLimitSkipPaths replaces the set of paths that bypass throttling.
func WithRateLimitSkipPaths(paths ...string) RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.skipPaths = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			m.skipPaths[p] = struct{}{}
		}
	}
}

// NewRateLimitMiddleware creates the throttling middleware.
func NewRateLimitMiddleware(limiter RequestLimiter, logger *zap.Logger, opts ...RateLimitOption) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
		skipPaths: map[string]struct{}{
			"/healthz": {},
			"/readyz":  {},
			"/metrics": {},
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// clientKey extracts the throttling key for a request.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First hop is the original client.
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

// Handler wraps next with per-client throttling.  The limiter fails open, so
// Redis outages degrade to unthrottled service rather than a hard outage.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := m.skipPaths[r.URL.Path]; skip {
			next.ServeHTTP(w, r)
			return
		}

		key := clientKey(r)
		allowed, remaining, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			m.logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.Limit()))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			if m.metrics != nil {
				m.metrics.RateLimitRejections.Inc()
			}
			retryAfter := int(m.limiter.Window().Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    string(errors.ErrCodeTooManyRequests),
				"message": errors.DefaultMessageForCode(errors.ErrCodeTooManyRequests),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
