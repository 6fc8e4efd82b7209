// Package metrics exposes Prometheus collectors for the budget sweep and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "moneta"

// Metrics owns a private registry so that tests and multiple processes never
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	rollovers        prometheus.Counter
	rolloverFailures prometheus.Counter
	sweepDuration    prometheus.Histogram
	httpRequests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_rollovers_total",
			Help:      "Recurring budgets rolled over into a new period.",
		}),
		rolloverFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_rollover_failures_total",
			Help:      "Recurring budgets whose rollover failed.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of one recurring budget sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.rollovers,
		m.rolloverFailures,
		m.sweepDuration,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSweep records one sweep outcome.
func (m *Metrics) ObserveSweep(duration time.Duration, rolledOver, failed int) {
	m.sweepDuration.Observe(duration.Seconds())
	m.rollovers.Add(float64(rolledOver))
	m.rolloverFailures.Add(float64(failed))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Route labels for requests that never reached a mux pattern.
const (
	RouteUnmatched   = "unmatched"
	RouteRateLimited = "rate_limited"
)

// Middleware counts requests by the ServeMux pattern that matched, so that
// path parameters do not explode the label cardinality. Requests rejected
// before routing with 429 are counted under RouteRateLimited.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		switch {
		case route != "":
		case rec.status == http.StatusTooManyRequests:
			route = RouteRateLimited
		default:
			route = RouteUnmatched
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
