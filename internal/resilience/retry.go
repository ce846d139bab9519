package resilience

import (
	"context"
	"time"
)

// Policy configures Do.
type Policy struct {
	MaxAttempts int // total attempts, including the first

	// Backoff is the delay before retry n (Backoff[0] precedes the second
	// attempt). When the schedule is shorter than the attempt budget its last
	// entry is reused. An empty schedule retries immediately.
	Backoff []time.Duration

	// Retryable decides whether a failed attempt may be repeated. Nil means
	// every error is retryable.
	Retryable func(error) bool

	// OnRetry is called before each retry with the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ExponentialBackoff returns n delays starting at initial and doubling.
func ExponentialBackoff(initial time.Duration, n int) []time.Duration {
	out := make([]time.Duration, 0, n)
	d := initial
	for i := 0; i < n; i++ {
		out = append(out, d)
		d *= 2
	}
	return out
}

// Do runs fn until it succeeds, returns a non-retryable error, or the attempt
// budget is spent. fn receives the 1-based attempt number. Attempts never
// overlap: each retry starts after the previous failure and its full delay.
// Do returns the last result, the number of attempts made and the last error.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = fn(ctx, attempt)
		if err == nil {
			return result, attempt, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return result, attempt, err
		}
		if attempt == maxAttempts {
			break
		}

		delay := p.delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if delay > 0 {
			if serr := sleep(ctx, delay); serr != nil {
				return result, attempt, err
			}
		}
	}
	return result, maxAttempts, err
}

func (p Policy) delay(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	i := attempt - 1
	if i >= len(p.Backoff) {
		i = len(p.Backoff) - 1
	}
	return p.Backoff[i]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
