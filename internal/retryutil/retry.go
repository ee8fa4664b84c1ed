package retryutil

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultAttempts = 6
	defaultDelay    = 3 * time.Second
)

// Policy is a bounded retry policy: up to Attempts calls, Delay apart,
// retrying only errors accepted by Retryable.
type Policy struct {
	Attempts  int
	Delay     time.Duration
	Retryable func(error) bool
	// OnRetry, when set, observes each failed attempt that will be retried
	OnRetry func(attempt int, err error)
}

// DefaultPolicy returns the default policy retrying errors accepted by retryable
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		Attempts:  defaultAttempts,
		Delay:     defaultDelay,
		Retryable: retryable,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// run out, or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoValue is Do for functions that return a value
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(attempts-1)),
		ctx,
	)

	var (
		attempt int
		lastErr error
	)
	op := func() (T, error) {
		attempt++
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if p.Retryable == nil || !p.Retryable(err) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}
	notify := func(err error, _ time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}

	out, err := backoff.RetryNotifyWithData(op, b, notify)
	if err != nil && lastErr != nil {
		// cancellation while waiting still reports the call's own failure
		return out, lastErr
	}
	return out, err
}
