package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// RequestID extracts the request id installed by the API middleware, or ""
// when the context carries none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Time records the duration of an operation. Use as:
//
//	defer obs.Time(ctx, log, "matching.ProcessBatch")(&err)
func Time(ctx context.Context, log zerolog.Logger, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		ev := log.Debug().
			Str("req_id", reqID).
			Str("op", name).
			Int64("dur_ms", time.Since(start).Milliseconds())
		if errp != nil && *errp != nil {
			ev = log.Warn().
				Str("req_id", reqID).
				Str("op", name).
				Int64("dur_ms", time.Since(start).Milliseconds()).
				Err(*errp)
		}
		ev.Msg("op timed")
	}
}
