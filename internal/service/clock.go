package service

import (
	"context"
	"time"
)

// Sleeper pauses the engine between cycles. The real clock is injected in
// production; tests substitute an instant one to step through cycles.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ClockSleeper sleeps on the wall clock, waking early when the context is
// canceled.
type ClockSleeper struct{}

// Sleep implements Sleeper.
func (ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
