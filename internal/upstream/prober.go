package upstream

import (
	"context"
	"log/slog"
	"time"

	"github.com/dpearson/cachingproxy/internal/config"
)

// LivenessGauge receives liveness updates from the prober. Implemented by
// internal/metrics.Metrics; kept as an interface here so upstream does not
// import metrics directly.
type LivenessGauge interface {
	SetUpstreamUp(up bool)
}

// Prober periodically polls the upstream's health path and records the
// result. It never influences request routing — there is exactly one
// upstream, so there is nothing to route around — it exists purely so
// operators can see "upstream is down" in metrics and logs before their
// users report errors.
//
// Grounded on the teacher's Server.startHealthChecks/performHealthChecks
// loop (internal/proxy/server.go), generalized from "per-backend health,
// feeding the load balancer's routing decision" to "single-upstream
// health, feeding only observability".
type Prober struct {
	client *Client
	cfg    config.LivenessProbeConfig
	gauge  LivenessGauge
	logger *slog.Logger
}

// NewProber constructs a prober for client using cfg's path/interval/
// timeout. gauge may be nil if no metrics sink is wired.
func NewProber(client *Client, cfg config.LivenessProbeConfig, gauge LivenessGauge, logger *slog.Logger) *Prober {
	return &Prober{client: client, cfg: cfg, gauge: gauge, logger: logger}
}

// Run polls at cfg.Interval until ctx is cancelled. It performs one
// immediate check before entering the ticker loop so the first liveness
// reading is available without waiting a full interval.
func (p *Prober) Run(ctx context.Context) {
	if !p.cfg.Enabled {
		return
	}

	p.check(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Prober) check(ctx context.Context) {
	resp, err := p.client.Get(ctx, p.cfg.Path, p.cfg.Timeout)
	up := err == nil
	if err == nil {
		resp.Body.Close()
		up = resp.StatusCode >= 200 && resp.StatusCode < 300
	}

	if p.gauge != nil {
		p.gauge.SetUpstreamUp(up)
	}

	if p.logger != nil {
		if up {
			p.logger.Debug("upstream liveness probe succeeded", slog.Int("port", p.client.Port()))
		} else {
			p.logger.Warn("upstream liveness probe failed", slog.Int("port", p.client.Port()), slog.Any("error", err))
		}
	}
}
