// Package middleware provides the HTTP middleware stack for the notice API.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/monitoring/prometheus"
)

// LoggingMiddleware logs every request and records HTTP metrics.
type LoggingMiddleware struct {
	logger        *zap.Logger
	metrics       *prometheus.Metrics
	skipPaths     map[string]struct{}
	slowThreshold time.Duration
}

// LoggingOption customises a LoggingMiddleware.
type LoggingOption func(*LoggingMiddleware)

// WithMetrics attaches HTTP metrics recording.
func WithMetrics(metrics *prometheus.Metrics) LoggingOption {
	return func(m *LoggingMiddleware) { m.metrics = metrics }
}

// WithSkipPaths replaces the set of paths excluded from logging.
func WithSkipPaths(paths ...string) LoggingOption {
	return func(m *LoggingMiddleware) {
		m.skipPaths = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			m.skipPaths[p] = struct{}{}
		}
	}
}

// WithSlowThreshold overrides the duration above which requests log at Warn.
func WithSlowThreshold(d time.Duration) LoggingOption {
	return func(m *LoggingMiddleware) { m.slowThreshold = d }
}

// NewLoggingMiddleware creates the request logging middleware.
func NewLoggingMiddleware(logger *zap.Logger, opts ...LoggingOption) *LoggingMiddleware {
	m := &LoggingMiddleware{
		logger: logger,
		skipPaths: map[string]struct{}{
			"/healthz": {},
			"/readyz":  {},
			"/metrics": {},
		},
		slowThreshold: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler wraps next with request logging and metrics.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := m.skipPaths[r.URL.Path]; skip {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		if m.metrics != nil {
			m.metrics.RecordHTTPRequest(r.Method, r.URL.Path, ww.Status(), duration)
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		}

		switch {
		case ww.Status() >= http.StatusInternalServerError:
			m.logger.Error("request failed", fields...)
		case ww.Status() >= http.StatusBadRequest || duration > m.slowThreshold:
			m.logger.Warn("request completed", fields...)
		default:
			m.logger.Info("request completed", fields...)
		}
	})
}
