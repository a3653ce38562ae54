package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRetry tells Blocking to call the function again. Wrap it with the reason.
var ErrRetry = errors.New("retry")

// Backoff blocks until the next try. It returns ctx.Err() when ctx is done first.
type Backoff func(context.Context) error

// ExponentialBackoff waits initialInterval * r^N before the N-th retry.
//
// The interval does not grow beyond limit. limit <= 0 means no limit.
func ExponentialBackoff(initialInterval time.Duration, r float64, limit time.Duration) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			interval = time.Duration(float64(interval) * r)
			if 0 < limit && limit < interval {
				interval = limit
			}
			return nil
		}
	}
}

// Blocking calls f until it returns nil or an error which is not ErrRetry.
// Between calls, it waits with b.
//
// When b gives up, Blocking returns the error of b joined with the last error of f.
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	for {
		last, err := f()
		if err == nil {
			return last, nil
		}
		if !errors.Is(err, ErrRetry) {
			return last, err
		}
		if berr := b(ctx); berr != nil {
			return last, errors.Join(berr, err)
		}
	}
}
