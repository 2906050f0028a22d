package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID returns a context carrying the request id used in timing logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID extracts the request id, or "" when none is set.
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// Time logs the duration of an operation. Call the returned func with a pointer
// to the operation's named error result, usually via defer.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		fields := []zap.Field{
			zap.String("req_id", reqID),
			zap.String("op", name),
			zap.Int64("dur_ms", dur.Milliseconds()),
		}

		if errp != nil && *errp != nil {
			zap.L().Warn("operation failed", append(fields, zap.Error(*errp))...)
			return
		}
		zap.L().Debug("operation done", fields...)
	}
}
