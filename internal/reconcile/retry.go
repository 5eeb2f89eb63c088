package reconcile

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jstrand/bt/internal/store"
)

// RetryPolicy governs how remote writes are retried inside one trigger.
// Timing lives here, not in the controller, so tests inject a zero-delay
// policy.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}

// DefaultRetryPolicy suits interactive use: a couple of quick retries, then
// give up and let the next trigger try again.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Jitter:      250 * time.Millisecond,
	}
}

// ZeroRetryPolicy runs every attempt back to back. Test use.
func ZeroRetryPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts}
}

// Do runs fn until it succeeds, fails with a non-network error, exhausts
// MaxAttempts, or the context is cancelled. The delay doubles each attempt
// with a random jitter on top.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := p.BaseDelay
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := delay
			if p.Jitter > 0 {
				wait += time.Duration(rand.Int63n(int64(p.Jitter)))
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			delay *= 2
		}

		if err = fn(); err == nil {
			return nil
		}
		// Only connectivity failures are worth repeating.
		if !errors.Is(err, store.ErrNetworkUnavailable) {
			return err
		}
	}
	return err
}
