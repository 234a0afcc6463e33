// Package rewriter builds the upstream request from an incoming client
// request: retargeting its URI at the single configured upstream and
// appending forwarding headers.
//
// Grounded on the teacher's internal/proxy/reverse_proxy.go Director
// pattern, trimmed to the single-upstream, no-clone ownership discipline
// spec.md §9 calls for: mutate the request in place, then hand it to the
// upstream client.
package rewriter

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Rewrite retargets req at 127.0.0.1:upstreamPort, preserving its path and
// query, and appends X-Forwarded-For (peerIP) and X-Forwarded-Port
// (listenPort) headers. Both are appended, never replacing any
// existing header lines of the same name, so a downstream consumer can
// observe every hop's value.
//
// Method, headers, HTTP version, and body are otherwise left untouched.
func Rewrite(req *http.Request, peerIP string, listenPort, upstreamPort int) error {
	upstreamURI := fmt.Sprintf("http://127.0.0.1:%d%s", upstreamPort, req.URL.EscapedPath())
	target, err := url.Parse(upstreamURI)
	if err != nil {
		return fmt.Errorf("construct upstream URI: %w", err)
	}
	target.RawQuery = req.URL.RawQuery

	req.URL = target
	req.Host = target.Host
	req.RequestURI = ""

	req.Header.Add("X-Forwarded-For", peerIP)
	req.Header.Add("X-Forwarded-Port", strconv.Itoa(listenPort))

	return nil
}
