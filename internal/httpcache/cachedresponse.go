// Package httpcache holds the response cache: the CachedResponse data
// model, the request/response policy that decides cache keys and
// cachability, the body materializer that turns a live upstream response
// into cacheable bytes, and the Cache that wires those onto an LRU store.
//
// Grounded on the teacher's internal/middleware.CacheEntry and adapted to
// the memory-footprint and TTL-from-Cache-Control semantics of the
// original rustnish cache.rs/lib.rs.
package httpcache

import (
	"net/http"
)

// fixedOverheadBytes approximates the memory cost of the CachedResponse
// struct itself (status int, version string header, slice headers), the
// same "size_of_val of the struct" term the original Rust cache charges
// before adding header and body bytes.
const fixedOverheadBytes = 64

// CachedResponse is the materialized, owned form of an upstream HTTP
// response suitable for storage in the LRU and independent replay to
// multiple clients.
type CachedResponse struct {
	Status  int
	Version string // one of "0.9", "1.0", "1.1", "2.0"
	Header  http.Header
	Body    []byte
}

// MemoryFootprint is the authoritative byte count the LRU charges against
// its budget: fixed overhead, plus header name/value bytes, plus body
// length.
func (c CachedResponse) MemoryFootprint() int {
	size := fixedOverheadBytes
	for name, values := range c.Header {
		for _, v := range values {
			size += len(name) + len(v)
		}
	}
	size += len(c.Body)
	return size
}

// VersionLabel maps an HTTP response's protocol major/minor to the
// version tag used both for cache storage and for the Via decoration.
func VersionLabel(major, minor int) string {
	switch {
	case major == 0 && minor == 9:
		return "0.9"
	case major == 1 && minor == 0:
		return "1.0"
	case major == 1 && minor == 1:
		return "1.1"
	case major == 2:
		return "2.0"
	default:
		return "1.1"
	}
}
