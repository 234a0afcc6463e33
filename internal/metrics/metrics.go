package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics collection for the caching proxy.
// Tracks request counts, durations, cache effectiveness, and upstream
// liveness for monitoring.
type Metrics struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	upstreamUp        prometheus.Gauge
	activeConnections prometheus.Gauge
	cacheLookups      *prometheus.CounterVec
	cacheEntries      prometheus.Gauge
	cacheUsedBytes    prometheus.Gauge
}

// NewMetrics creates new metrics collector with Prometheus instruments
// and registers them with the default registry for HTTP exposition.
func NewMetrics() *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cachingproxy_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cachingproxy_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		upstreamUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cachingproxy_upstream_up",
				Help: "Upstream liveness as last observed by the background probe (1=up, 0=down)",
			},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cachingproxy_active_connections",
				Help: "Number of active connections",
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cachingproxy_cache_lookups_total",
				Help: "Cache lookups by outcome",
			},
			[]string{"outcome"}, // hit, miss, bypass
		),
		cacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cachingproxy_cache_entries",
				Help: "Number of entries currently held in the response cache",
			},
		),
		cacheUsedBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cachingproxy_cache_used_bytes",
				Help: "Bytes currently charged against the response cache's memory budget",
			},
		),
	}

	prometheus.MustRegister(m.requestsTotal)
	prometheus.MustRegister(m.requestDuration)
	prometheus.MustRegister(m.upstreamUp)
	prometheus.MustRegister(m.activeConnections)
	prometheus.MustRegister(m.cacheLookups)
	prometheus.MustRegister(m.cacheEntries)
	prometheus.MustRegister(m.cacheUsedBytes)

	return m
}

// RecordRequest records HTTP request metrics including duration and status.
func (m *Metrics) RecordRequest(method, statusCode string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, statusCode).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// SetUpstreamUp implements upstream.LivenessGauge.
func (m *Metrics) SetUpstreamUp(up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	m.upstreamUp.Set(value)
}

// RecordCacheLookup records a single cache lookup outcome: "hit", "miss",
// or "bypass" (the request itself is not cacheable, so no lookup is made).
func (m *Metrics) RecordCacheLookup(outcome string) {
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// SetCacheUsage reports the cache's current entry count and byte usage.
// The proxy handler calls it after each cache store (which includes any
// evictions that store caused); expiry sweeps during lookups do not
// update the gauges.
func (m *Metrics) SetCacheUsage(entries int, usedBytes int64) {
	m.cacheEntries.Set(float64(entries))
	m.cacheUsedBytes.Set(float64(usedBytes))
}

// IncrementConnections increments active connection count.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Inc()
}

// DecrementConnections decrements active connection count.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Dec()
}

// Handler returns HTTP handler for Prometheus metrics exposition.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware creates middleware for automatic request metrics
// collection.
func (m *Metrics) MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.IncrementConnections()
			defer m.DecrementConnections()

			wrapper := &statusRecorder{ResponseWriter: w, statusCode: 200}
			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			m.RecordRequest(r.Method, strconv.Itoa(wrapper.statusCode), duration)
		})
	}
}

// statusRecorder wraps ResponseWriter to capture HTTP status codes.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}
