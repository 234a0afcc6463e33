package httpcache

import (
	"net/http"
	"testing"
	"time"
)

func TestCacheStoreThenLookup(t *testing.T) {
	c := NewCache(1024)
	resp := CachedResponse{Status: 200, Version: "1.1", Header: http.Header{}, Body: []byte("hi")}

	c.Store("/", resp, time.Minute)

	got, ok := c.Lookup("/")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got.Body) != "hi" {
		t.Errorf("expected body %q, got %q", "hi", got.Body)
	}
}

func TestCacheExpiredNotReturned(t *testing.T) {
	c := NewCache(1024)
	resp := CachedResponse{Status: 200, Version: "1.1", Header: http.Header{}, Body: []byte("hi")}

	c.Store("/", resp, -time.Second)

	if _, ok := c.Lookup("/"); ok {
		t.Error("expected expired entry to be absent")
	}
}

func TestCacheOversizeResponseNotStored(t *testing.T) {
	c := NewCache(8)
	resp := CachedResponse{Status: 200, Version: "1.1", Header: http.Header{}, Body: []byte("this body is far too large for the budget")}

	c.Store("/", resp, time.Minute)

	if _, ok := c.Lookup("/"); ok {
		t.Error("expected oversize response to be rejected")
	}
	if c.UsedBytes() != 0 {
		t.Errorf("expected 0 used bytes, got %d", c.UsedBytes())
	}
}
