// Package ratelimit enforces a per-host minimum delay between requests.
// The delay is a politeness floor, not a throughput optimization: every
// fetch to a host waits for it no matter how idle the pipeline is.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/openlawindex/harvester/internal/metrics"
)

// Limiter manages one token bucket per host.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

// New creates a Limiter with the given minimum inter-request interval.
// Intervals at or below zero fall back to one second rather than
// disabling the floor.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// Wait blocks until the host's bucket allows another request, respecting
// the context. Waits over a millisecond are recorded as rate-limit delay.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)

	l.mu.Lock()
	limiter, exists := l.limiters[host]
	if !exists {
		// Burst of one: the floor applies between every pair of requests.
		limiter = rate.NewLimiter(rate.Every(l.interval), 1)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(host, waited)
	}
	return nil
}

// Interval reports the configured floor.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
