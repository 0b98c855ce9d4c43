package resilience

import (
	"context"
	"time"
)

// RetryPolicy describes a bounded linear retry schedule: re-running the
// zero-based attempt n waits (n+1)*Interval first.
type RetryPolicy struct {
	MaxRetries int
	Interval   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		Interval:   time.Second,
	}
}

func NormalizeRetryPolicy(p RetryPolicy) RetryPolicy {
	defaults := DefaultRetryPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = defaults.MaxRetries
	}
	if p.Interval <= 0 {
		p.Interval = defaults.Interval
	}
	return p
}

func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return time.Duration(attempt+1) * p.Interval
}

// Wait blocks for the attempt's backoff or until ctx is done.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.Backoff(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
