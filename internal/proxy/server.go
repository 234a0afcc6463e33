// Package proxy implements the connection acceptor and per-request
// pipeline: cache lookup, request rewriting, upstream forwarding,
// response decoration, and cache population.
//
// Grounded on the teacher's internal/proxy/server.go Server/NewServer/
// Start/Shutdown shape (dependency-injected components, context-driven
// background work, http.Server lifecycle), generalized from a
// multi-backend load-balanced handler to this spec's single-upstream
// caching pipeline.
package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/dpearson/cachingproxy/internal/config"
	"github.com/dpearson/cachingproxy/internal/httpcache"
	"github.com/dpearson/cachingproxy/internal/logging"
	"github.com/dpearson/cachingproxy/internal/metrics"
	"github.com/dpearson/cachingproxy/internal/middleware"
	"github.com/dpearson/cachingproxy/internal/upstream"
)

// Server is the caching reverse proxy: it accepts client connections on
// listen_port and forwards to the single upstream at 127.0.0.1:upstream_port.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	cache      *httpcache.Cache
	upstream   *upstream.Client
	prober     *upstream.Prober
	metrics    *metrics.Metrics
	logger     *slog.Logger
	reqLogger  *logging.Logger
}

// NewServer wires the cache, upstream client, liveness prober, metrics,
// and middleware chain (request logging, rate limiting, then metrics)
// ahead of the core proxy handler.
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	var cache *httpcache.Cache
	if cfg.Cache.Enabled {
		cache = httpcache.NewCache(int(cfg.Cache.MaxBytes))
	}

	m := metrics.NewMetrics()
	client := upstream.NewClient(cfg.Upstream.Port, cfg.Upstream.ConnectTimeout, cfg.Upstream.ResponseHeaderTimeout)
	prober := upstream.NewProber(client, cfg.Upstream.LivenessProbe, m, logger)

	s := &Server{
		cfg:       cfg,
		cache:     cache,
		upstream:  client,
		prober:    prober,
		metrics:   m,
		logger:    logger,
		reqLogger: logging.NewLogger(cfg.Tracing.ServiceName),
	}

	s.httpServer = &http.Server{
		Handler:      s.buildHandler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// buildHandler wraps the core proxy handler with the configured
// middleware chain, in the teacher's chain-of-responsibility style:
// request logging/tracing runs outermost, then rate limiting (optional),
// then Prometheus instrumentation, then the proxy pipeline itself.
func (s *Server) buildHandler() http.Handler {
	var handler http.Handler = http.HandlerFunc(s.proxyHandler)

	chain := []middleware.Middleware{middleware.NewMetrics(s.metrics)}
	if s.cfg.RateLimit.Enabled {
		chain = append([]middleware.Middleware{middleware.NewRateLimiter(s.cfg.RateLimit)}, chain...)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i].Wrap(handler)
	}
	return s.reqLogger.HTTPRequestLogger()(handler)
}

// Metrics returns the server's metrics collector. Its instruments are
// registered with the default Prometheus registry, which is what the
// /metrics endpoint in cmd/proxy/main.go serves.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Start binds the listen port and serves until ctx is cancelled. A bind
// failure is returned immediately, before any request is served — the
// only fatal error condition this server has.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Server.ListenPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	go s.prober.Run(ctx)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully stops the HTTP server, allowing in-flight requests
// to complete within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
