package httpcache

import (
	"bytes"
	"io"
	"net/http"
)

// MaterializeForCache drains resp's body into a contiguous byte buffer and
// returns both the CachedResponse suitable for storage and a fresh
// *http.Response backed by the same bytes for onward delivery to the
// client — resp's own body has been fully consumed and must not be read
// again.
//
// The drain is bounded by maxBytes. If the body turns out to be larger,
// oversize is true, cached is the zero value, and delivered streams the
// bytes already read followed by the remainder of resp.Body directly —
// the response is still delivered correctly, it is simply never buffered
// or cached, per the "streaming preferred" guidance for oversize
// responses.
func MaterializeForCache(resp *http.Response, maxBytes int) (cached CachedResponse, delivered *http.Response, oversize bool, err error) {
	limited := io.LimitReader(resp.Body, int64(maxBytes)+1)
	buf, err := io.ReadAll(limited)
	if err != nil {
		return CachedResponse{}, nil, false, err
	}

	if len(buf) > maxBytes {
		delivered = cloneResponse(resp, io.NopCloser(io.MultiReader(bytes.NewReader(buf), resp.Body)))
		return CachedResponse{}, delivered, true, nil
	}

	cached = CachedResponse{
		Status:  resp.StatusCode,
		Version: VersionLabel(resp.ProtoMajor, resp.ProtoMinor),
		Header:  cloneHeader(resp.Header),
		Body:    buf,
	}

	delivered = cloneResponse(resp, io.NopCloser(bytes.NewReader(buf)))
	delivered.ContentLength = int64(len(buf))

	return cached, delivered, false, nil
}

// Rehydrate builds a fresh *http.Response from a CachedResponse. Each call
// returns an independent response: mutating it, including draining its
// body, never affects the cached entry or any other rehydration of it.
func Rehydrate(entry CachedResponse) *http.Response {
	header := cloneHeader(entry.Header)
	major, minor := protoVersionParts(entry.Version)
	return &http.Response{
		Status:        http.StatusText(entry.Status),
		StatusCode:    entry.Status,
		Proto:         "HTTP/" + entry.Version,
		ProtoMajor:    major,
		ProtoMinor:    minor,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
	}
}

func cloneResponse(resp *http.Response, body io.ReadCloser) *http.Response {
	clone := *resp
	clone.Header = cloneHeader(resp.Header)
	clone.Body = body
	return &clone
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		clonedValues := make([]string, len(values))
		copy(clonedValues, values)
		out[name] = clonedValues
	}
	return out
}

func protoVersionParts(label string) (major, minor int) {
	switch label {
	case "0.9":
		return 0, 9
	case "1.0":
		return 1, 0
	case "2.0":
		return 2, 0
	default:
		return 1, 1
	}
}
