package rewriter

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRewriteSetsUpstreamURI(t *testing.T) {
	req := httptest.NewRequest("GET", "/widgets?x=1", nil)

	if err := Rewrite(req, "198.51.100.7", 8080, 9090); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.URL.String() != "http://127.0.0.1:9090/widgets?x=1" {
		t.Errorf("unexpected upstream URI: %s", req.URL.String())
	}
}

func TestRewriteAppendsForwardingHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	if err := Rewrite(req, "127.0.0.1", 8080, 9090); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := req.Header.Values("X-Forwarded-For")
	if len(got) != 2 || got[0] != "1.2.3.4" || got[1] != "127.0.0.1" {
		t.Errorf("expected two distinct X-Forwarded-For lines, got %v", got)
	}

	if port := req.Header.Get("X-Forwarded-Port"); port != "8080" {
		t.Errorf("expected X-Forwarded-Port 8080, got %s", port)
	}
}

func TestRewritePreservesMethodAndBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/submit", strings.NewReader("form=data"))

	if err := Rewrite(req, "127.0.0.1", 8080, 9090); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method != "POST" {
		t.Errorf("expected method preserved, got %s", req.Method)
	}
	body, err := io.ReadAll(req.Body)
	if err != nil || string(body) != "form=data" {
		t.Errorf("expected body preserved, got %q (err %v)", body, err)
	}
}
