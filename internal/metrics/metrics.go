// Package metrics provides Prometheus metrics for mirror runs and the store API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Item outcomes recorded by the mirror engine
const (
	OutcomeWritten  = "written"
	OutcomeSkipped  = "skipped"
	OutcomeUnplaced = "unplaced"
)

var (
	mirrorItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "specular_mirror_items_total",
			Help: "Exported items by write outcome",
		},
		[]string{"outcome"},
	)

	exportFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "specular_mirror_export_failures_total",
			Help: "Exports that degraded to an empty payload",
		},
		[]string{"strategy"},
	)

	listFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "specular_mirror_list_failures_total",
			Help: "Container listings that failed and were treated as dead branches",
		},
	)

	mirrorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "specular_mirror_runs_total",
			Help: "Mirror runs by final status",
		},
		[]string{"status"},
	)

	mirrorRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "specular_mirror_run_duration_seconds",
			Help:    "Wall time of a complete mirror run",
			Buckets: prometheus.DefBuckets,
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "specular_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "specular_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// RecordItem counts one exported item by outcome.
func RecordItem(outcome string) {
	mirrorItemsTotal.WithLabelValues(outcome).Inc()
}

// RecordExportFailure counts one failed export.
func RecordExportFailure(strategy string) {
	exportFailuresTotal.WithLabelValues(strategy).Inc()
}

// RecordListFailure counts one failed container listing.
func RecordListFailure() {
	listFailuresTotal.Inc()
}

// RecordRun records the final status and duration of a run.
func RecordRun(success bool, d time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	mirrorRunsTotal.WithLabelValues(status).Inc()
	mirrorRunDuration.Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments requests using the matched chi route pattern as the path label.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
