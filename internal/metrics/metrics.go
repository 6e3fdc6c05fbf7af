// Package metrics registers the Prometheus collectors of the progress service
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Completion triggers
const (
	TriggerExplicit = "explicit"
	TriggerPlayback = "playback"
)

var (
	// LessonCompletions counts lessons flipped to completed, by trigger
	LessonCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progress_lesson_completions_total",
		Help: "Lessons marked completed, by trigger.",
	}, []string{"trigger"})

	// LessonUncompletions counts completed lessons reverted by the learner
	LessonUncompletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progress_lesson_uncompletions_total",
		Help: "Completed lessons marked incomplete.",
	})

	// Heartbeats counts playback telemetry writes
	Heartbeats = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progress_video_heartbeats_total",
		Help: "Video progress heartbeats stored.",
	})

	// OperationDuration observes engine operations including retries
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "progress_operation_duration_seconds",
		Help:    "Duration of progress engine operations.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"operation", "outcome"})

	// TxRetries counts transactions re-run after a store conflict
	TxRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progress_tx_retries_total",
		Help: "Transactions retried after a serialization conflict, by MySQL error number.",
	}, []string{"code"})

	// ContentStatsDrift is the difference between the cached and recounted lesson total
	ContentStatsDrift = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "progress_content_stats_drift",
		Help: "Recounted minus cached content statistics at the last reconciliation.",
	}, []string{"tenant_id", "counter"})

	// RepairedRows counts aggregate rows rewritten by repair jobs
	RepairedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progress_repaired_aggregates_total",
		Help: "Aggregate rows recomputed by repair operations.",
	}, []string{"scope"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "progress_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveOperation records the duration of an engine operation that started at start
func ObserveOperation(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	OperationDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware observes request latency. route resolves the route label after the handler ran.
func HTTPMiddleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			httpRequestDuration.
				WithLabelValues(r.Method, route(r), strconv.Itoa(sw.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
