package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bookline/bookline/pkg/contextkeys"
	"github.com/bookline/bookline/pkg/observability"
)

// Instrument assigns a request ID, writes an access log line, and records
// HTTP metrics. It runs outermost so every request, including rejected
// ones, is observable.
type Instrument struct {
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewInstrument creates an Instrument middleware
func NewInstrument(logger *observability.Logger, metrics *observability.Metrics) *Instrument {
	return &Instrument{
		logger:  logger,
		metrics: metrics,
	}
}

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Handler wraps an HTTP handler with instrumentation
func (m *Instrument) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		logger := m.logger.WithField("request_id", requestID)
		ctx := contextkeys.WithRequestID(r.Context(), requestID)
		ctx = contextkeys.WithLogger(ctx, logger)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r.WithContext(ctx))
		duration := time.Since(start)

		path := routeTemplate(r)
		if m.metrics != nil {
			m.metrics.ObserveHTTPRequest(r.Method, path, recorder.status, duration)
		}

		logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      recorder.status,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": r.RemoteAddr,
		}).Info("request completed")
	})
}

// routeTemplate returns the mux route template for the request so metric
// labels stay low-cardinality. Falls back to the raw path for unmatched
// requests.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}
