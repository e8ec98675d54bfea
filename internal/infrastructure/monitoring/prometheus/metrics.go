package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default buckets per concern.  Analysis is pure CPU work and finishes in
// milliseconds; generation calls an external model and can take tens of
// seconds.
var (
	DefaultHTTPDurationBuckets       = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultGenerationDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultDBDurationBuckets         = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// Metrics holds every metric the service emits.
type Metrics struct {
	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPActiveRequests  prometheus.Gauge

	// Analysis pipeline
	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	SanitizationsTotal  prometheus.Counter
	RiskFindingsTotal   *prometheus.CounterVec
	ProfessionalHelpRec *prometheus.CounterVec

	// Letter generation
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec

	// Infrastructure
	DBQueryDuration      *prometheus.HistogramVec
	CacheHitsTotal       *prometheus.CounterVec
	CacheMissesTotal     *prometheus.CounterVec
	EventsPublishedTotal *prometheus.CounterVec
	RateLimitRejections  prometheus.Counter

	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics registers all service metrics on reg and returns the handle.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"method", "path"}),
		HTTPActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "In-flight HTTP requests",
		}),

		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed notice analyses",
		}, []string{"notice_type", "risk_level"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Notice analysis duration",
			Buckets:   DefaultAnalysisDurationBuckets,
		}),
		SanitizationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sanitizations_total",
			Help:      "Generated letters that required sanitization",
		}),
		RiskFindingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_findings_total",
			Help:      "Risk findings detected in user text",
		}, []string{"category"}),
		ProfessionalHelpRec: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "professional_help_recommendations_total",
			Help:      "Analyses that recommended professional help",
		}, []string{"urgency"}),

		GenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Letter generation attempts",
		}, []string{"notice_type", "outcome"}),
		GenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "External model call duration",
			Buckets:   DefaultGenerationDurationBuckets,
		}, []string{"model"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration",
			Buckets:   DefaultDBDurationBuckets,
		}, []string{"operation"}),
		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits",
		}, []string{"cache"}),
		CacheMissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses",
		}, []string{"cache"}),
		EventsPublishedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Usage events published to Kafka",
		}, []string{"topic", "status"}),
		RateLimitRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter",
		}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total errors by component",
		}, []string{"component", "error_code"}),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording helpers
// ─────────────────────────────────────────────────────────────────────────────

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAnalysis records one completed notice analysis.
func (m *Metrics) RecordAnalysis(noticeType, riskLevel string, duration time.Duration) {
	m.AnalysesTotal.WithLabelValues(noticeType, riskLevel).Inc()
	m.AnalysisDuration.Observe(duration.Seconds())
}

// RecordGeneration records one letter generation attempt.  outcome is one of
// "success", "policy_violation", "warning", or "error".
func (m *Metrics) RecordGeneration(noticeType, outcome, model string, duration time.Duration) {
	m.GenerationsTotal.WithLabelValues(noticeType, outcome).Inc()
	m.GenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordCacheAccess records a cache hit or miss.
func (m *Metrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordError records an error by component and application error code.
func (m *Metrics) RecordError(component, errorCode string) {
	m.ErrorsTotal.WithLabelValues(component, errorCode).Inc()
}
