package middleware

import (
	"net/http"

	"github.com/dpearson/cachingproxy/internal/metrics"
)

// metricsMiddleware adapts Prometheus metrics into Middleware
type metricsMiddleware struct {
	m *metrics.Metrics
}

// NewMetrics constructs the metrics middleware
func NewMetrics(m *metrics.Metrics) Middleware {
	return &metricsMiddleware{m: m}
}

// Wrap instruments each request with Prometheus metrics
func (mm *metricsMiddleware) Wrap(next http.Handler) http.Handler {
	return mm.m.MetricsMiddleware()(next)
}
