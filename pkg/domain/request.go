package domain

import "context"

type requestIdKey struct{}

// WithRequestId tags operations done with the context by the request id.
func WithRequestId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIdKey{}, id)
}

// RequestIdOf returns the request id set by WithRequestId, or "".
func RequestIdOf(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}
