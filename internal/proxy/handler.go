package proxy

import (
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/dpearson/cachingproxy/internal/decorator"
	"github.com/dpearson/cachingproxy/internal/httpcache"
	"github.com/dpearson/cachingproxy/internal/rewriter"
)

const (
	bodyInvalidUpstreamURI = "Invalid upstream URI"
	bodyTransportFailure   = "Something went wrong, please try again later."
)

// proxyHandler implements the per-request pipeline of the connection
// acceptor: cache lookup, rewrite, forward, decorate, cache populate.
//
// Grounded on the teacher's Server.proxyHandler (internal/proxy/server.go),
// replacing backend selection with the cache-lookup-then-forward
// sequence this spec requires.
func (s *Server) proxyHandler(w http.ResponseWriter, r *http.Request) {
	cacheKey, cacheable := "", false
	if s.cache != nil {
		cacheKey, cacheable = httpcache.CacheKey(r)
	}

	if cacheable {
		if entry, hit := s.cache.Lookup(cacheKey); hit {
			s.metrics.RecordCacheLookup("hit")
			writeResponse(w, httpcache.Rehydrate(entry))
			return
		}
		s.metrics.RecordCacheLookup("miss")
	} else if s.cache != nil {
		s.metrics.RecordCacheLookup("bypass")
	}

	peerIP := peerAddr(r.RemoteAddr)
	if err := rewriter.Rewrite(r, peerIP, s.cfg.Server.ListenPort, s.cfg.Upstream.Port); err != nil {
		s.logger.Warn("upstream URI construction failed", slog.Any("error", err))
		writeSynthesized(w, http.StatusBadRequest, bodyInvalidUpstreamURI)
		return
	}

	resp, err := s.upstream.Do(r)
	if err != nil {
		s.logger.Warn("upstream transport failure", slog.Any("error", err))
		writeSynthesized(w, http.StatusBadGateway, bodyTransportFailure)
		return
	}
	defer resp.Body.Close()

	decorator.Decorate(resp)

	if !cacheable || s.cache == nil {
		writeResponse(w, resp)
		return
	}

	ttl, ok := httpcache.CacheTTL(resp.Header)
	if !ok {
		writeResponse(w, resp)
		return
	}

	cached, delivered, oversize, err := httpcache.MaterializeForCache(resp, int(s.cfg.Cache.MaxBytes))
	if err != nil {
		s.logger.Warn("failed to materialize response for caching", slog.Any("error", err))
		writeResponse(w, resp)
		return
	}
	if oversize {
		writeResponse(w, delivered)
		return
	}

	s.cache.Store(cacheKey, cached, ttl)
	s.metrics.SetCacheUsage(s.cache.Len(), int64(s.cache.UsedBytes()))
	writeResponse(w, delivered)
}

// writeResponse copies status, headers, and body verbatim to w.
func writeResponse(w http.ResponseWriter, resp *http.Response) {
	header := w.Header()
	for name, values := range resp.Header {
		for _, value := range values {
			header.Add(name, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != nil {
		io.Copy(w, resp.Body)
	}
}

// writeSynthesized sends one of the two locally-generated error bodies.
// The exact upstream error is never exposed to the client (§4.5).
func writeSynthesized(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// peerAddr strips the port from a host:port remote address, falling
// back to the raw value if it cannot be split (e.g. already bare).
func peerAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
