package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/dpearson/cachingproxy/internal/config"
)

type fakeGauge struct {
	calls []bool
}

func (f *fakeGauge) SetUpstreamUp(up bool) {
	f.calls = append(f.calls, up)
}

func testPort(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse test server port: %v", err)
	}
	return port
}

func TestProberMarksUpstreamUpOn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(testPort(t, srv), time.Second, time.Second)
	gauge := &fakeGauge{}
	prober := NewProber(client, config.LivenessProbeConfig{Enabled: true, Path: "/", Interval: time.Hour, Timeout: time.Second}, gauge, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prober.check(ctx)

	if len(gauge.calls) != 1 || !gauge.calls[0] {
		t.Errorf("expected one up=true call, got %v", gauge.calls)
	}
}

func TestProberMarksUpstreamDownOnConnectionRefused(t *testing.T) {
	client := NewClient(1, time.Millisecond, time.Millisecond)
	gauge := &fakeGauge{}
	prober := NewProber(client, config.LivenessProbeConfig{Enabled: true, Path: "/", Interval: time.Hour, Timeout: 50 * time.Millisecond}, gauge, nil)

	prober.check(context.Background())

	if len(gauge.calls) != 1 || gauge.calls[0] {
		t.Errorf("expected one up=false call, got %v", gauge.calls)
	}
}

func TestProberDisabledNeverChecks(t *testing.T) {
	client := NewClient(1, time.Millisecond, time.Millisecond)
	gauge := &fakeGauge{}
	prober := NewProber(client, config.LivenessProbeConfig{Enabled: false}, gauge, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	prober.Run(ctx)

	if len(gauge.calls) != 0 {
		t.Errorf("expected no checks while disabled, got %v", gauge.calls)
	}
}
