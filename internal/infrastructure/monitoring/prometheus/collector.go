// Package prometheus defines the service's Prometheus metrics and exposes the
// scrape handler.  A single Metrics value is created at startup and injected
// into the HTTP layer and application services.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every metric emitted by this service.
const namespace = "notice"

// NewRegistry returns a fresh prometheus.Registry pre-loaded with the standard
// process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return reg
}

// Handler returns the HTTP handler that serves the registry's metrics in
// OpenMetrics format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Timer measures the elapsed time of a single operation and records it into
// an observer on ObserveDuration.
type Timer struct {
	observer prometheus.Observer
	start    time.Time
}

// NewTimer starts a timer against the given observer.
func NewTimer(observer prometheus.Observer) *Timer {
	return &Timer{observer: observer, start: time.Now()}
}

// ObserveDuration records the elapsed seconds since the timer was created.
func (t *Timer) ObserveDuration() {
	if t.observer == nil {
		return
	}
	t.observer.Observe(time.Since(t.start).Seconds())
}
