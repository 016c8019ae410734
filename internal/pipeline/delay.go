package pipeline

import (
	"context"
	"time"
)

// DelayPolicy spaces out calls toward the AI provider. A policy object keeps
// the pipeline loop free of sleep details and leaves room for smarter
// strategies later.
type DelayPolicy interface {
	Wait(ctx context.Context) error
}

type fixedDelay struct {
	d time.Duration
}

// NewFixedDelay returns a policy that waits a constant duration between
// calls. A non-positive duration waits not at all.
func NewFixedDelay(d time.Duration) DelayPolicy {
	return &fixedDelay{d: d}
}

func (f *fixedDelay) Wait(ctx context.Context) error {
	if f.d <= 0 {
		return nil
	}

	timer := time.NewTimer(f.d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
