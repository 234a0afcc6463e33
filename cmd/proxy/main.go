package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dpearson/cachingproxy/internal/config"
	"github.com/dpearson/cachingproxy/internal/proxy"
	"github.com/dpearson/cachingproxy/internal/tracing"
)

// main initializes and starts the caching reverse proxy. It orchestrates
// configuration loading, tracing/metrics bring-up, server start, and
// graceful shutdown on SIGINT/SIGTERM.
func main() {
	var (
		configPath   = flag.String("config", "", "Path to YAML configuration file (optional)")
		listenPort   = flag.Int("listen-port", 0, "Port the proxy accepts client connections on (overrides config)")
		upstreamPort = flag.Int("upstream-port", 0, "Port of the single upstream at 127.0.0.1 (overrides config)")
		adminPort    = flag.Int("admin-port", 9090, "Port serving /metrics")
	)
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatal(err)
	}
	cfg := config.GetInstance()

	if *listenPort != 0 {
		cfg.Server.ListenPort = *listenPort
	}
	if *upstreamPort != 0 {
		cfg.Upstream.Port = *upstreamPort
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	shutdownTracing, err := tracing.InitTracing(cfg.Tracing)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing()

	server := proxy.NewServer(cfg, logger)

	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminServer := &http.Server{Addr: ":" + strconv.Itoa(*adminPort), Handler: adminMux}
	go func() {
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin server error", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting caching proxy", slog.Int("listen_port", cfg.Server.ListenPort), slog.Int("upstream_port", cfg.Upstream.Port))
		if err := server.Start(ctx); err != nil && err != context.Canceled {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	<-sigChan
	logger.Info("received termination signal, shutting down gracefully")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", slog.Any("error", err))
	}
	adminServer.Shutdown(shutdownCtx)

	logger.Info("caching proxy stopped")
}
