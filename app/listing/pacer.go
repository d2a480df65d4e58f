package listing

import (
	"context"
	"time"
)

// Pacer enforces the minimum delay between consecutive upstream requests.
// Injected so tests can run with zero delay.
type Pacer interface {
	Wait(ctx context.Context)
}

// SleepPacer waits a fixed interval, or less when the context is cancelled.
type SleepPacer struct {
	Interval time.Duration
}

func (p SleepPacer) Wait(ctx context.Context) {
	if p.Interval <= 0 {
		return
	}
	timer := time.NewTimer(p.Interval)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// NopPacer never waits.
type NopPacer struct{}

func (NopPacer) Wait(ctx context.Context) {}
