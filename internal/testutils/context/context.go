package context

import (
	"context"
	"testing"
	"time"
)

// margin left before the deadline of tests, to clean up database namespaces.
const margin = 3 * time.Second

// WithTest returns ctx with the deadline of t, less a margin for cleanups.
//
// When t has no deadline, ctx is returned as it is.
func WithTest(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	deadline, ok := t.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, deadline.Add(-margin))
}
