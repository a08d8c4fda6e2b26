package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/demo-microservice/pkg/logger"
	"github.com/okian/demo-microservice/pkg/metrics"
)

// HTTP status code constants.
const (
	statusBadRequest       = 400
	statusNotFound         = 404
	statusMethodNotAllowed = 405
	statusInternalError    = 500
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// unmatchedEndpoint labels requests no route pattern matched.
const unmatchedEndpoint = "unmatched"

// Wrap applies the server-wide middleware chain around h:
// RequestID -> Recovery -> AccessLog -> h. A nil m records on metrics.Default().
func Wrap(h http.Handler, log logger.Logger, m *metrics.Manager) http.Handler {
	m = orDefault(m)
	return RequestID(Recovery(log, m)(AccessLog(log, m)(h)))
}

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
// A panicking handler is recorded as a 500 before the panic continues.
func MetricsMiddleware(m *metrics.Manager, next http.HandlerFunc, endpoint string) http.HandlerFunc {
	m = orDefault(m)
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.IncInFlight()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			m.DecInFlight()
			rec := recover()
			status := wrapped.statusCode
			if rec != nil {
				status = http.StatusInternalServerError
			}
			recordRequest(m, endpoint, r.Method, status, time.Since(start))
			if rec != nil {
				panic(rec)
			}
		}()

		next.ServeHTTP(wrapped, r)
	}
}

func orDefault(m *metrics.Manager) *metrics.Manager {
	if m == nil {
		return metrics.Default()
	}
	return m
}

func recordRequest(m *metrics.Manager, endpoint, method string, statusCode int, elapsed time.Duration) {
	durationMs := float64(elapsed.Microseconds()) / 1000
	statusCodeStr := strconv.Itoa(statusCode)

	m.RecordHTTPRequest(endpoint, method, statusCodeStr)
	m.RecordHTTPRequestDuration(endpoint, method, statusCodeStr, durationMs)

	if statusCode >= statusBadRequest {
		errorType := getErrorType(statusCode)
		m.RecordErrorByEndpoint(endpoint, method, errorType)
		m.RecordErrorByType(errorType, getErrorSeverity(statusCode))
	}
}

// RequestID reuses the inbound X-Request-ID or mints a UUID, and exposes it
// on the request context, the request header and the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		r = r.WithContext(logger.WithRequestID(r.Context(), requestID))
		r.Header.Set(RequestIDHeader, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}

// AccessLog writes one debug record per request. It must sit directly in
// front of the ServeMux so the matched pattern is visible after dispatch.
// Requests no pattern matched are also counted in metrics. A panic is
// logged with status 500 and then continues to Recovery.
func AccessLog(log logger.Logger, m *metrics.Manager) func(http.Handler) http.Handler {
	m = orDefault(m)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				rec := recover()
				status := wrapped.statusCode
				if rec != nil {
					status = http.StatusInternalServerError
				}
				elapsed := time.Since(start)
				if r.Pattern == "" {
					recordRequest(m, unmatchedEndpoint, r.Method, status, elapsed)
				}
				log.Debug(r.Context(), "http request",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("pattern", r.Pattern),
					logger.Int("status", status),
					logger.Duration("duration", elapsed),
				)
				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// Recovery turns a handler panic into a plain 500 response.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recovery(log logger.Logger, m *metrics.Manager) func(http.Handler) http.Handler {
	m = orDefault(m)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity as net/http does
					panic(rec)
				}

				m.RecordPanic()
				log.Error(r.Context(), "recovered from panic",
					logger.Error(fmt.Errorf("%w: %v", ErrPanic, rec)),
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("stack", string(debug.Stack())),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusMethodNotAllowed:
		return "method_not_allowed"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// getErrorSeverity returns error severity based on HTTP status code.
func getErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "high"
	case statusCode >= statusBadRequest:
		return "medium"
	default:
		return "low"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
