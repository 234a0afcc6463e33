package httpcache

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// sessionCookiePattern matches a session-bearing cookie. Requests
// carrying one bypass the cache entirely, matching the reference
// implementation's regex exactly.
var sessionCookiePattern = regexp.MustCompile(`SESS[A-Za-z0-9_]+=`)

// CacheKey derives the cache key for a request, or reports ok=false if
// the request is not cacheable at all (non-GET, or a session cookie is
// present). The key is the request URI as received: path plus query,
// host omitted under the single-upstream assumption.
func CacheKey(r *http.Request) (key string, ok bool) {
	if r.Method != http.MethodGet {
		return "", false
	}
	if cookie := r.Header.Get("Cookie"); cookie != "" {
		if sessionCookiePattern.MatchString(cookie) {
			return "", false
		}
	}
	return r.URL.RequestURI(), true
}

// CacheTTL inspects a response's Cache-Control headers and returns the
// TTL to store the response for, or ok=false if the response must not be
// cached. Only "public" and "max-age=<seconds>" are recognized; every
// other directive is ignored. A response is cachable only when "public"
// is present and max-age parses to a positive value (an unparseable
// max-age is treated as zero, per spec, which is not cachable).
func CacheTTL(header http.Header) (ttl time.Duration, ok bool) {
	var public bool
	var maxAge uint64

	for _, headerValue := range header.Values("Cache-Control") {
		for _, token := range strings.Split(headerValue, ",") {
			token = strings.TrimSpace(token)
			if token == "public" {
				public = true
				continue
			}
			name, value, found := strings.Cut(token, "=")
			if !found || name != "max-age" {
				continue
			}
			parsed, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				parsed = 0
			}
			maxAge = parsed
		}
	}

	if public && maxAge > 0 {
		return time.Duration(maxAge) * time.Second, true
	}
	return 0, false
}
