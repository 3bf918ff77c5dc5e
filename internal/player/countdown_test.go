package player

import (
	"context"
	"testing"
	"time"
)

func TestCountdownRemaining(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newCountdownWithClock(base.Add(90*time.Second), func() time.Time { return base })

	if got := c.Remaining(); got != 90*time.Second {
		t.Fatalf("expected 90s remaining, got %v", got)
	}
	if c.Expired() {
		t.Fatalf("countdown should not be expired")
	}
}

func TestCountdownFloorsAtZero(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newCountdownWithClock(base.Add(-time.Minute), func() time.Time { return base })

	if got := c.Remaining(); got != 0 {
		t.Fatalf("expected zero remaining, got %v", got)
	}
	if !c.Expired() {
		t.Fatalf("countdown should be expired")
	}
}

func TestWatchFiresOnExpiry(t *testing.T) {
	c := NewCountdown(time.Now().Add(10 * time.Millisecond))

	fired := make(chan struct{})
	go c.Watch(context.Background(), func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected watch to fire after deadline")
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	c := NewCountdown(time.Now().Add(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Watch(ctx, func() { t.Error("watch must not fire after cancel") })
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected watch to return on cancel")
	}
}
