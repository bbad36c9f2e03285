package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/openlawindex/harvester/internal/metrics"
)

func TestLimiterEnforcesHostFloor(t *testing.T) {
	metrics.Init()

	l := New(100 * time.Millisecond)
	ctx := context.Background()

	// First request consumes the initial token immediately.
	if err := l.Wait(ctx, "https://law.example.com/a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second request to the same host must wait out the floor.
	start := time.Now()
	if err := l.Wait(ctx, "https://law.example.com/b"); err != nil {
		t.Fatal(err)
	}
	if dur := time.Since(start); dur < 80*time.Millisecond {
		t.Errorf("expected wait ~100ms, got %v", dur)
	}
}

func TestLimiterIsolatesHosts(t *testing.T) {
	metrics.Init()

	l := New(time.Second)
	ctx := context.Background()

	if err := l.Wait(ctx, "https://a.example.com/1"); err != nil {
		t.Fatal(err)
	}

	// A different host must not be blocked by the first host's bucket.
	start := time.Now()
	if err := l.Wait(ctx, "https://b.example.com/1"); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("second host blocked unexpectedly")
	}
}

func TestLimiterRespectsContext(t *testing.T) {
	metrics.Init()

	l := New(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "https://slow.example.com/1"); err != nil {
		t.Fatal(err)
	}
	if err := l.Wait(ctx, "https://slow.example.com/2"); err == nil {
		t.Fatal("expected context timeout error")
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	if got := New(0).Interval(); got != time.Second {
		t.Errorf("expected 1s default interval, got %v", got)
	}
}
