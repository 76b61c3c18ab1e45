// Package requestcontext carries request-scoped values from middleware to
// services without importing net/http: the operator and role from the bearer
// token, the request ID, and the instant every computation in the request
// is evaluated against.
package requestcontext

import (
	"context"
	"time"
)

type (
	operatorKey    struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func stringValue(ctx context.Context, key any) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// Operator is the authenticated operator subject, or "" when auth is off or
// the caller is the CLI or the sweep.
func Operator(ctx context.Context) string { return stringValue(ctx, operatorKey{}) }

func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

func Role(ctx context.Context) string { return stringValue(ctx, roleKey{}) }

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey{}) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now is the pinned evaluation instant, falling back to the wall clock when
// nothing pinned one.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// PinnedTime returns the instant pinned on ctx, if any.
func PinnedTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(requestTimeKey{}).(time.Time)
	return t, ok
}

// WithTime pins the evaluation instant. The requesttime middleware, the SLA
// sweep and opsctl --at all go through here.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
