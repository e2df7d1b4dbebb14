// Package metrics exposes Prometheus collectors for the snapshot generator.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page outcomes recorded by ObservePage.
const (
	PageGenerated   = "generated"
	PageRenderError = "render_error"
	PageUploadError = "upload_error"
)

// Run outcomes recorded by ObserveRun.
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunRejected  = "rejected"
)

var (
	snapshotPagesTotal            *prometheus.CounterVec
	snapshotPageBytesTotal        *prometheus.CounterVec
	snapshotFetchErrorsTotal      *prometheus.CounterVec
	snapshotRunsTotal             *prometheus.CounterVec
	snapshotRunDurationSeconds    prometheus.Histogram
	snapshotRunsInProgress        prometheus.Gauge
	snapshotUploadThrottleSeconds prometheus.Histogram
	snapshotVerifyChecksTotal     *prometheus.CounterVec
	httpRequestsTotal             *prometheus.CounterVec
	httpRequestDurationSeconds    *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		snapshotPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_pages_total",
				Help: "Total number of pages processed, labeled by page kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		snapshotPageBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_page_bytes_total",
				Help: "Total number of bytes uploaded, labeled by page kind.",
			},
			[]string{"kind"},
		)

		snapshotFetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_fetch_errors_total",
				Help: "Total number of failed collection fetches, labeled by collection.",
			},
			[]string{"collection"},
		)

		snapshotRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_runs_total",
				Help: "Total number of generation runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		snapshotRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "snapshot_run_duration_seconds",
				Help:    "Histogram of generation run durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		)

		snapshotRunsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "snapshot_runs_in_progress",
				Help: "Number of generation runs currently executing.",
			},
		)

		snapshotUploadThrottleSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "snapshot_upload_throttle_seconds",
				Help:    "Histogram of upload rate limit wait durations.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
		)

		snapshotVerifyChecksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_verify_checks_total",
				Help: "Total number of published snapshot checks, labeled by result.",
			},
			[]string{"result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records the outcome of one page and its size when uploaded.
func ObservePage(kind, outcome string, size int) {
	Init()
	snapshotPagesTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == PageGenerated && size > 0 {
		snapshotPageBytesTotal.WithLabelValues(kind).Add(float64(size))
	}
}

// ObserveFetchError counts a collection that could not be fetched.
func ObserveFetchError(collection string) {
	Init()
	snapshotFetchErrorsTotal.WithLabelValues(collection).Inc()
}

// ObserveRun records a finished or rejected run.
func ObserveRun(outcome string, duration time.Duration) {
	Init()
	snapshotRunsTotal.WithLabelValues(outcome).Inc()
	if outcome != RunRejected {
		snapshotRunDurationSeconds.Observe(duration.Seconds())
	}
}

// IncRunsInProgress increments the in-progress gauge.
func IncRunsInProgress() {
	Init()
	snapshotRunsInProgress.Inc()
}

// DecRunsInProgress decrements the in-progress gauge.
func DecRunsInProgress() {
	Init()
	snapshotRunsInProgress.Dec()
}

// ObserveUploadThrottle records the duration of an upload rate limit wait.
func ObserveUploadThrottle(duration time.Duration) {
	Init()
	snapshotUploadThrottleSeconds.Observe(duration.Seconds())
}

// ObserveVerifyCheck counts one verification result ("ok" or "failed").
func ObserveVerifyCheck(result string) {
	Init()
	snapshotVerifyChecksTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
