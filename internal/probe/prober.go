package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"isitdown/internal/domain"
)

// Prober performs a single check against a target URL. It never
// returns an error; every failure mode is encoded in the result.
type Prober interface {
	Probe(ctx context.Context, target string) domain.ProbeResult
}

// HTTPProber issues one GET per probe and classifies the outcome.
// Safe for concurrent use.
type HTTPProber struct {
	Gate   ConnectivityGate
	Client *http.Client
}

func NewHTTPProber(gate ConnectivityGate, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProber{
		Gate:   gate,
		Client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, target string) domain.ProbeResult {
	if p.Gate != nil && !p.Gate.IsConnected() {
		// Fail fast: no network call is attempted while offline.
		return domain.ProbeResult{
			NoInternet: true,
			IsDown:     true,
			StatusCode: domain.CodeNoInternet,
			ErrorDesc:  "No internet connection",
		}
	}

	u, err := url.Parse(target)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return domain.ProbeResult{
			URLError:   true,
			IsDown:     true,
			StatusCode: domain.CodeInvalidURL,
			ErrorDesc:  "Invalid URL",
		}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.ProbeResult{
			URLError:   true,
			IsDown:     true,
			StatusCode: domain.CodeInvalidURL,
			ErrorDesc:  "Invalid URL",
		}
	}

	resp, err := p.Client.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		// Connection refused, timeout, DNS failure, TLS failure.
		return domain.ProbeResult{
			URLError:     true,
			IsDown:       true,
			StatusCode:   domain.CodeTransport,
			ResponseTime: elapsed,
			ErrorDesc:    refineTransportError(u.Hostname(), err),
		}
	}
	defer resp.Body.Close()

	res := domain.ProbeResult{
		StatusCode:   resp.StatusCode,
		ResponseTime: elapsed,
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return res
	}
	res.IsDown = true
	res.ErrorDesc = reasonPhrase(resp.StatusCode)
	return res
}

// reasonPhrase renders a status code the way it is shown to the user,
// e.g. "Client Error: Not Found".
func reasonPhrase(code int) string {
	var class string
	switch {
	case code >= 300 && code < 400:
		class = "Redirection"
	case code >= 400 && code < 500:
		class = "Client Error"
	case code >= 500 && code < 600:
		class = "Server Error"
	default:
		return fmt.Sprintf("HTTP %d", code)
	}
	if text := http.StatusText(code); text != "" {
		return class + ": " + text
	}
	return fmt.Sprintf("%s: HTTP %d", class, code)
}
