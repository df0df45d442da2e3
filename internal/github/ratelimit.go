// internal/github/ratelimit.go
package github

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"
)

// RateLimitReport is what the observer saw on a throttled response.
type RateLimitReport struct {
	Remaining string
	ResetAt   time.Time
	Wait      time.Duration
}

// RateLimitObserver reports GitHub throttling. It only logs; it never waits or retries.
type RateLimitObserver struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimitObserver creates an observer logging through logger.
func NewRateLimitObserver(logger *slog.Logger) *RateLimitObserver {
	return &RateLimitObserver{logger: logger, now: time.Now}
}

// Observe inspects resp and, for a 403, logs the remaining quota and time until reset.
// It returns nil when resp is not a 403.
func (o *RateLimitObserver) Observe(resp *http.Response) *RateLimitReport {
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		return nil
	}

	report := &RateLimitReport{Remaining: resp.Header.Get(HeaderRateRemaining)}
	if report.Remaining != "" {
		o.logger.Warn("GitHub API rate limit remaining", "remaining", report.Remaining)
	}

	reset := resp.Header.Get(HeaderRateReset)
	if reset == "" {
		return report
	}
	epoch, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		epoch = 0
	}
	report.ResetAt = time.Unix(epoch, 0)
	report.Wait = max(report.ResetAt.Sub(o.now()).Truncate(time.Second), 0)

	o.logger.Warn("GitHub API rate limit reset",
		"reset_at", epoch,
		"wait_seconds", int64(report.Wait/time.Second),
	)
	return report
}
