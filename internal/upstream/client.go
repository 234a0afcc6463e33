// Package upstream wraps the single fixed origin the proxy forwards to:
// a pooled HTTP client for request forwarding, and an observability-only
// liveness prober.
//
// Grounded on the teacher's internal/loadbalancer HTTPBackend (pooled
// *http.Client, health-check loop), trimmed from a weighted multi-backend
// pool down to this spec's single 127.0.0.1:port origin — see DESIGN.md
// for why the selection-strategy half of loadbalancer was dropped
// instead of adapted.
package upstream

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Client forwards requests to the single configured upstream origin.
type Client struct {
	httpClient *http.Client
	port       int
}

// NewClient builds a pooled HTTP client targeting 127.0.0.1:port.
// connectTimeout bounds the TCP handshake; responseHeaderTimeout bounds
// the wait for the upstream's status line once the request is sent.
func NewClient(port int, connectTimeout, responseHeaderTimeout time.Duration) *Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: responseHeaderTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			// Redirects are the client's concern, not the proxy's: forward
			// the upstream's 3xx response verbatim instead of following it.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		port: port,
	}
}

// Port returns the upstream port this client was constructed for.
func (c *Client) Port() int {
	return c.port
}

// Do forwards req, which must already be rewritten (see the rewriter
// package) to target this upstream. Any error returned is a transport
// failure — connection refused, DNS, timeout, or a malformed response
// line — and the caller should synthesize a 502, never retry.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// Get issues a simple GET to path on the upstream, used by the liveness
// prober. It does not go through the rewriter since it is not a client
// request being forwarded.
func (c *Client) Get(ctx context.Context, path string, timeout time.Duration) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d%s", c.port, path), nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}
