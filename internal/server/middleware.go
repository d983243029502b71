package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rorical/filedrop/internal/httpjson"
	"github.com/Rorical/filedrop/internal/logging"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// RequestLogging assigns a request id, attaches a request-scoped logger to
// the context and logs one line per request.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(httpjson.RequestIDHeader)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		w.Header().Set(httpjson.RequestIDHeader, reqID)

		logger := logging.FromContext(r.Context()).With("request_id", reqID)
		r = r.WithContext(logging.WithLogger(r.Context(), logger))

		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()

		next.ServeHTTP(sw, r)

		span := trace.SpanFromContext(r.Context())
		sc := span.SpanContext()
		traceID := ""
		spanID := ""
		if sc.IsValid() {
			traceID = sc.TraceID().String()
			spanID = sc.SpanID().String()
		}

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"request_bytes", r.ContentLength,
			"response_bytes", sw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"trace_id", traceID,
			"span_id", spanID,
		)
	})
}
