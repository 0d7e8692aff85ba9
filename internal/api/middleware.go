package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"freight-matching-service/internal/platform/obs"
)

// statusWriter captures the final HTTP status code and number of bytes written.
// This helps distinguish "handler returned 200" from "client received a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// requestMiddleware assigns each request an id, installs a request-scoped
// logger on the context, and logs the end-to-end outcome. Incoming
// X-Request-ID headers are honored so ids survive proxies.
func requestMiddleware(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}

		reqLog := log.With().Str("req_id", reqID).Logger()
		ctx := obs.WithRequestID(r.Context(), reqID)
		ctx = reqLog.WithContext(ctx)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", reqID)
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		reqLog.Info().
			Str("method", r.Method).
			Str("path", r.URL.RequestURI()).
			Int("status", sw.status).
			Int("bytes", sw.bytes).
			Int64("dur_ms", time.Since(start).Milliseconds()).
			Msg("request handled")
	})
}
