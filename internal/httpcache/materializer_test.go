package httpcache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
)

func fakeUpstreamResponse(status int, header http.Header, body string) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestMaterializeForCacheCapturesFields(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "text/plain")
	resp := fakeUpstreamResponse(200, header, "hello world")

	cached, delivered, oversize, err := MaterializeForCache(resp, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oversize {
		t.Fatal("expected response to fit within budget")
	}
	if cached.Status != 200 || cached.Version != "1.1" {
		t.Errorf("unexpected cached fields: %+v", cached)
	}
	if string(cached.Body) != "hello world" {
		t.Errorf("expected cached body %q, got %q", "hello world", cached.Body)
	}

	deliveredBody, _ := io.ReadAll(delivered.Body)
	if string(deliveredBody) != "hello world" {
		t.Errorf("expected delivered body %q, got %q", "hello world", deliveredBody)
	}
}

func TestMaterializeForCacheOversizeStillDelivers(t *testing.T) {
	resp := fakeUpstreamResponse(200, nil, "0123456789")

	cached, delivered, oversize, err := MaterializeForCache(resp, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !oversize {
		t.Fatal("expected response over budget to be flagged oversize")
	}
	if cached.Body != nil {
		t.Error("expected no cached response for oversize body")
	}

	deliveredBody, _ := io.ReadAll(delivered.Body)
	if string(deliveredBody) != "0123456789" {
		t.Errorf("expected full body still delivered, got %q", deliveredBody)
	}
}

func TestRehydrateIndependentOfCachedEntry(t *testing.T) {
	cached := CachedResponse{
		Status:  200,
		Version: "1.1",
		Header:  http.Header{"X-Test": {"a", "b"}},
		Body:    []byte("payload"),
	}

	resp1 := Rehydrate(cached)
	resp1.Header.Set("X-Test", "mutated")
	body1, _ := io.ReadAll(resp1.Body)
	if string(body1) != "payload" {
		t.Fatalf("unexpected body: %q", body1)
	}

	resp2 := Rehydrate(cached)
	if got := resp2.Header.Values("X-Test"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected cached entry unaffected by prior rehydration's mutation, got %v", got)
	}
	body2, _ := io.ReadAll(resp2.Body)
	if string(body2) != "payload" {
		t.Errorf("expected independent body, got %q", body2)
	}
}
