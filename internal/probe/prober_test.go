package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"isitdown/internal/domain"
)

type fakeGate struct{ connected bool }

func (g fakeGate) IsConnected() bool { return g.connected }

func TestProbeUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProber(nil, 5*time.Second)
	res := p.Probe(context.Background(), srv.URL)

	if !res.Up() {
		t.Fatalf("expected up, got %+v", res)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if res.ResponseTime <= 0 {
		t.Fatalf("expected positive response time, got %f", res.ResponseTime)
	}
	if res.ErrorDesc != "" {
		t.Fatalf("expected empty error description, got %q", res.ErrorDesc)
	}
}

func TestProbeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHTTPProber(nil, 5*time.Second)
	res := p.Probe(context.Background(), srv.URL)

	if res.Up() {
		t.Fatal("expected down on 503")
	}
	if !res.IsDown || res.StatusCode != 503 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ErrorDesc != "Server Error: Service Unavailable" {
		t.Fatalf("unexpected error description: %q", res.ErrorDesc)
	}
}

func TestProbeClientError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := NewHTTPProber(nil, 5*time.Second)
	res := p.Probe(context.Background(), srv.URL)

	if !res.IsDown || res.StatusCode != 404 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ErrorDesc != "Client Error: Not Found" {
		t.Fatalf("unexpected error description: %q", res.ErrorDesc)
	}
}

func TestProbeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewHTTPProber(nil, 50*time.Millisecond)
	res := p.Probe(context.Background(), srv.URL)

	if !res.IsDown || !res.URLError {
		t.Fatalf("expected transport failure, got %+v", res)
	}
	if res.StatusCode != domain.CodeTransport {
		t.Fatalf("expected sentinel %d, got %d", domain.CodeTransport, res.StatusCode)
	}
	if res.ErrorDesc == "" {
		t.Fatal("expected an error description")
	}
}

func TestProbeInvalidURL(t *testing.T) {
	p := NewHTTPProber(nil, 5*time.Second)
	for _, target := range []string{"", "not a url", "relative/path", "http://"} {
		res := p.Probe(context.Background(), target)
		if !res.URLError || !res.IsDown {
			t.Fatalf("target %q: expected url error, got %+v", target, res)
		}
		if res.StatusCode != domain.CodeInvalidURL {
			t.Fatalf("target %q: expected sentinel %d, got %d", target, domain.CodeInvalidURL, res.StatusCode)
		}
		if res.ErrorDesc != "Invalid URL" {
			t.Fatalf("target %q: unexpected description %q", target, res.ErrorDesc)
		}
	}
}

func TestProbeOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made while offline")
	}))
	defer srv.Close()

	p := NewHTTPProber(fakeGate{connected: false}, 5*time.Second)
	res := p.Probe(context.Background(), srv.URL)

	if !res.NoInternet || !res.IsDown {
		t.Fatalf("expected offline result, got %+v", res)
	}
	if res.StatusCode != domain.CodeNoInternet {
		t.Fatalf("expected sentinel %d, got %d", domain.CodeNoInternet, res.StatusCode)
	}
}

func TestReasonPhrase(t *testing.T) {
	cases := map[int]string{
		301: "Redirection: Moved Permanently",
		404: "Client Error: Not Found",
		500: "Server Error: Internal Server Error",
		599: "Server Error: HTTP 599",
		700: "HTTP 700",
	}
	for code, want := range cases {
		if got := reasonPhrase(code); got != want {
			t.Errorf("reasonPhrase(%d) = %q, want %q", code, got, want)
		}
	}
}

type countingProber struct {
	calls   int
	results []domain.ProbeResult
}

func (c *countingProber) Probe(ctx context.Context, target string) domain.ProbeResult {
	res := c.results[c.calls]
	c.calls++
	return res
}

func TestRetryProberRecovers(t *testing.T) {
	inner := &countingProber{results: []domain.ProbeResult{
		{IsDown: true, StatusCode: 503},
		{StatusCode: 200},
	}}
	r := &RetryProber{Inner: inner, Attempts: 3, Backoff: time.Millisecond}

	res := r.Probe(context.Background(), "http://a.example")
	if !res.Up() {
		t.Fatalf("expected recovery on second attempt, got %+v", res)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 probes, got %d", inner.calls)
	}
}

func TestRetryProberStopsEarly(t *testing.T) {
	inner := &countingProber{results: []domain.ProbeResult{
		{NoInternet: true, IsDown: true, StatusCode: domain.CodeNoInternet},
	}}
	r := &RetryProber{Inner: inner, Attempts: 3, Backoff: time.Millisecond}

	res := r.Probe(context.Background(), "http://a.example")
	if !res.NoInternet {
		t.Fatalf("expected offline result, got %+v", res)
	}
	if inner.calls != 1 {
		t.Fatalf("offline must not be retried, got %d probes", inner.calls)
	}
}

func TestRetryProberExhausts(t *testing.T) {
	down := domain.ProbeResult{IsDown: true, StatusCode: 503}
	inner := &countingProber{results: []domain.ProbeResult{down, down, down}}
	r := &RetryProber{Inner: inner, Attempts: 3, Backoff: time.Millisecond}

	res := r.Probe(context.Background(), "http://a.example")
	if res.Up() {
		t.Fatal("expected down after exhausting retries")
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 probes, got %d", inner.calls)
	}
}

func TestDNSClass(t *testing.T) {
	if got := dnsClass("127.0.0.1"); got != "RESOLVES" {
		t.Fatalf("IP literal should resolve trivially, got %q", got)
	}
	if got := dnsClass(""); got != "INVALID_NAME" {
		t.Fatalf("empty host should be invalid, got %q", got)
	}
	if got := dnsClass("http://leftover"); got != "INVALID_NAME" {
		t.Fatalf("scheme-bearing host should be invalid, got %q", got)
	}
}
