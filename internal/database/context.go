package database

import (
	"context"
	"time"
)

type contextKey string

const (
	// ContextKeyQueryTimeout overrides the configured query timeout for a call.
	ContextKeyQueryTimeout contextKey = "db_query_timeout"
	// ContextKeyExecuteTimeout overrides the configured execute timeout for a call.
	ContextKeyExecuteTimeout contextKey = "db_execute_timeout"
)

// WithQueryTimeout returns a context that overrides the query timeout.
func WithQueryTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, ContextKeyQueryTimeout, d)
}

// WithExecuteTimeout returns a context that overrides the execute timeout.
func WithExecuteTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, ContextKeyExecuteTimeout, d)
}

// getTimeoutFromContext applies the override stored under key, or fallback.
// A deadline already on ctx that is sooner wins.
func getTimeoutFromContext(ctx context.Context, fallback time.Duration, key contextKey) (context.Context, context.CancelFunc) {
	timeout := fallback
	if override, ok := ctx.Value(key).(time.Duration); ok && override > 0 {
		timeout = override
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
