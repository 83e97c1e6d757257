package probe

import (
	"context"
	"time"

	"isitdown/internal/domain"
)

// RetryProber re-runs a failed probe a bounded number of times before
// reporting it down. Offline and invalid-URL results are returned
// immediately; retrying cannot change them.
type RetryProber struct {
	Inner    Prober
	Attempts int
	Backoff  time.Duration
}

func (r *RetryProber) Probe(ctx context.Context, target string) domain.ProbeResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last domain.ProbeResult
	for i := 0; i < attempts; i++ {
		last = r.Inner.Probe(ctx, target)
		if last.Up() || last.NoInternet || last.StatusCode == domain.CodeInvalidURL {
			return last
		}
		if i < attempts-1 {
			select {
			case <-time.After(r.Backoff):
			case <-ctx.Done():
				return last
			}
		}
	}
	return last
}
