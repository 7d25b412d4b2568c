// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	BulkActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfahub_bulk_actions_total",
			Help: "Customer records touched by bulk actions, by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	CSVImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfahub_csv_imports_total",
			Help: "CSV imports by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	GeocodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfahub_geocode_total",
			Help: "Geocoding lookups by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// RecordBulk counts one record handled by a bulk action.
func RecordBulk(action, outcome string) {
	BulkActionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordImport counts one finished CSV import.
func RecordImport(kind string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	CSVImportsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordGeocode counts one geocoding attempt.
func RecordGeocode(err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	GeocodeTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Middleware records request count and latency, labelled by the matched
// chi route pattern so IDs in paths do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, route, strconv.Itoa(status)}
		HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID echoes an incoming X-Request-ID or mints a UUID for it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
