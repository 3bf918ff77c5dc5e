package player

import (
	"context"
	"time"
)

// Countdown tracks an absolute deadline rather than a relative counter, so a
// resumed client recomputes the remaining time instead of restarting the full
// duration.
type Countdown struct {
	deadline time.Time
	now      func() time.Time
}

func NewCountdown(deadline time.Time) *Countdown {
	return newCountdownWithClock(deadline, time.Now)
}

func newCountdownWithClock(deadline time.Time, now func() time.Time) *Countdown {
	return &Countdown{deadline: deadline, now: now}
}

// Remaining returns the time left, floored at zero.
func (c *Countdown) Remaining() time.Duration {
	remaining := c.deadline.Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Countdown) Expired() bool {
	return c.Remaining() == 0
}

func (c *Countdown) Deadline() time.Time {
	return c.deadline
}

// Watch fires the callback once when the deadline passes. It returns
// immediately if the context is cancelled first.
func (c *Countdown) Watch(ctx context.Context, fire func()) {
	timer := time.NewTimer(c.Remaining())
	defer timer.Stop()
	select {
	case <-timer.C:
		fire()
	case <-ctx.Done():
	}
}
