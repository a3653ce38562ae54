package recurring

import (
	"context"

	"github.com/opre/ops/pkg/loop"
)

// Task is a loop body which does not decide its next step by itself.
//
// # Returns
//
// - T: the value for the next call.
//
// - bool: true when the task did something, so more backlog can be left.
//
// - error
type Task[T any] func(context.Context, T) (T, bool, error)

// Applied makes a loop.Task which asks p what to do after each call.
func (rt Task[T]) Applied(p Policy) loop.Task[T] {
	return func(ctx context.Context, t T) (T, loop.Next) {
		next, updated, err := rt(ctx, t)
		return next, p.Next(updated, err)
	}
}
