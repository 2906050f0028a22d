package api

import (
	"net/http"
	"shipment-allocation-service/internal/platform/obs"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

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

// requestIDMiddleware propagates the caller's X-Request-ID or assigns a new one,
// and stores it in the request context for obs.Time.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(obs.WithRequestID(r.Context(), reqID)))
	})
}

// loggingMiddleware logs end-to-end request duration and response size, and
// feeds the HTTP metrics when m is non-nil.
func loggingMiddleware(m *obs.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{
			ResponseWriter: w,
			status:         0,
		}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		zap.L().Info("request",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.RequestURI()),
			zap.Int("status", sw.status),
			zap.Int("bytes", sw.bytes),
			zap.Int64("dur_ms", duration.Milliseconds()),
		)

		if m != nil {
			// Unmatched paths share one label to bound cardinality.
			path := r.URL.Path
			if sw.status == http.StatusNotFound {
				path = "unmatched"
			}
			m.ObserveHTTP(r.Method, path, sw.status, duration)
		}
	})
}
