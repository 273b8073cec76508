package crawler

import (
	"context"
	"time"
)

// Delayer enforces the politeness pause between consecutive fetches. It is
// an explicit contract rather than an inline sleep so tests can inject a
// recording no-op.
type Delayer interface {
	// Delay blocks for the configured pause or until ctx is canceled.
	Delay(ctx context.Context) error
}

// sleepDelayer pauses with a context-aware timer.
type sleepDelayer struct {
	d time.Duration
}

// NewSleepDelayer returns a Delayer that sleeps for d. A zero duration
// returns immediately.
func NewSleepDelayer(d time.Duration) Delayer {
	return &sleepDelayer{d: d}
}

func (s *sleepDelayer) Delay(ctx context.Context) error {
	if s.d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
