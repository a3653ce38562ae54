package loop

import (
	"context"
	"fmt"
	"time"
)

// Next tells Start what to do after a task.
//
// The zero value is Continue(0).
type Next struct {
	err      error
	quit     bool
	interval time.Duration
}

func (n Next) String() string {
	switch {
	case n.err != nil:
		return fmt.Sprintf("[break] with error: %v", n.err)
	case n.quit:
		return "[break] without error"
	default:
		return fmt.Sprintf("[continue] interval: %s", n.interval)
	}
}

// Continue the loop after interval.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break the loop. err is returned from Start, and can be nil.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is a body of a loop.
//
// It receives the value returned by the previous call (or the initial value),
// and returns the value for the next call with what to do next.
type Task[T any] func(context.Context, T) (T, Next)

// Start calls task repeatedly until it breaks or ctx is done.
//
// For example, the CAN history projection consumes events one by one,
// and sleeps when nothing is left:
//
//	Start(ctx, 0, func(ctx context.Context, projected int) (int, Next) {
//		ok, err := history.ProjectNext(ctx, record)
//		if err != nil {
//			return projected, Break(err)
//		}
//		if !ok {
//			return projected, Continue(5 * time.Second)
//		}
//		return projected + 1, Continue(0)
//	})
//
// # Args
//
// - ctx: when it is done, the loop stops with ctx.Err().
//
// - init: the value passed to the first call of task.
//
// - task
//
// - options: options applied to each call of task.
//
// # Returns
//
// - T: the last value task returned. It is returned with errors too.
//
// - error: the error in Break, or ctx.Err().
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	if err := ctx.Err(); err != nil {
		return init, err
	}

	value := init
	for {
		v, next := runOnce(ctx, value, task, options)
		value = v
		if next.err != nil {
			return value, next.err
		}
		if next.quit {
			return value, nil
		}

		timer := time.NewTimer(next.interval)
		select {
		case <-ctx.Done():
			// shutting down wins over the timer.
			if !timer.Stop() {
				<-timer.C
			}
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

func runOnce[T any](ctx context.Context, value T, task Task[T], options []LoopOption) (T, Next) {
	lc := &loopConfig{ctx: ctx}
	for _, opt := range options {
		lc = opt(lc)
	}
	if lc.deferred != nil {
		defer lc.deferred()
	}
	return task(lc.ctx, value)
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
}

type LoopOption func(*loopConfig) *loopConfig

// WithTimeout sets a deadline on the context passed to each call of task.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		outer := lc.deferred
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				cancel()
				if outer != nil {
					outer()
				}
			},
		}
	}
}
