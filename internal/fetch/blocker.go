package fetch

import "sync"

// HostBlocker counts 403 responses per host and blocks hosts that cross
// the threshold for the remainder of the run. Runs start fresh.
type HostBlocker struct {
	mu        sync.Mutex
	threshold int
	counts    map[string]int
}

// NewHostBlocker builds a blocker. A threshold of zero or less disables
// blocking entirely.
func NewHostBlocker(threshold int) *HostBlocker {
	return &HostBlocker{
		threshold: threshold,
		counts:    make(map[string]int),
	}
}

// Note403 records one 403 from the host.
func (b *HostBlocker) Note403(host string) {
	if b.threshold <= 0 {
		return
	}
	b.mu.Lock()
	b.counts[host]++
	b.mu.Unlock()
}

// Blocked reports whether the host has crossed the threshold.
func (b *HostBlocker) Blocked(host string) bool {
	if b.threshold <= 0 {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[host] >= b.threshold
}
