package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/opre/ops/pkg/utils/retry"
)

func TestBlocking(t *testing.T) {
	t.Run("it retries until f succeeds", func(t *testing.T) {
		calls := 0
		got, err := retry.Blocking(
			context.Background(),
			retry.ExponentialBackoff(time.Millisecond, 2, 4*time.Millisecond),
			func() (int, error) {
				calls += 1
				if calls < 4 {
					return 0, fmt.Errorf("%w: not yet", retry.ErrRetry)
				}
				return 42, nil
			},
		)
		if err != nil {
			t.Fatal(err)
		}
		if got != 42 || calls != 4 {
			t.Errorf("(value, calls) = (%d, %d)", got, calls)
		}
	})

	t.Run("it stops at an error which is not retried", func(t *testing.T) {
		expected := errors.New("fatal")
		calls := 0
		_, err := retry.Blocking(
			context.Background(),
			retry.ExponentialBackoff(time.Millisecond, 1, 0),
			func() (int, error) {
				calls += 1
				return 0, expected
			},
		)
		if !errors.Is(err, expected) {
			t.Errorf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d", calls)
		}
	})

	t.Run("it gives up when context is done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		reason := errors.New("database is down")
		_, err := retry.Blocking(
			ctx,
			retry.ExponentialBackoff(5*time.Millisecond, 1, 0),
			func() (int, error) {
				return 0, fmt.Errorf("%w: %w", retry.ErrRetry, reason)
			},
		)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error is not deadline: %v", err)
		}
		if !errors.Is(err, reason) {
			t.Errorf("error does not tell the last reason: %v", err)
		}
	})
}
