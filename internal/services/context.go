package services

import "context"

type contextKey string

const (
	cycleKey     contextKey = "cycle"
	requestIDKey contextKey = "request_id"
)

// WithCycle annotates context with the loader cycle sequence number.
func WithCycle(ctx context.Context, seq uint64) context.Context {
	if seq == 0 {
		return ctx
	}
	return context.WithValue(ctx, cycleKey, seq)
}

// CycleFromContext extracts the loader cycle sequence number if present.
func CycleFromContext(ctx context.Context) (uint64, bool) {
	v, ok := ctx.Value(cycleKey).(uint64)
	if !ok || v == 0 {
		return 0, false
	}
	return v, true
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
