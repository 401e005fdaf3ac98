// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts processing requests by outcome kind.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planilhas_submissions_total",
			Help: "Total processing requests by outcome",
		},
		[]string{"outcome"},
	)

	// SubmissionDuration tracks the time from POST to classified reply.
	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planilhas_submission_duration_seconds",
			Help:    "Processing request duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	// RejectedFilesTotal counts attachments refused for their extension.
	RejectedFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planilhas_rejected_files_total",
			Help: "Files rejected for an unsupported extension",
		},
	)

	// ToastsTotal counts notifications shown.
	ToastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planilhas_toasts_total",
			Help: "Notifications pushed",
		},
	)

	// SubmissionInFlight is 1 while a request is outstanding.
	SubmissionInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "planilhas_submission_in_flight",
			Help: "Whether a processing request is outstanding",
		},
	)

	// SheetCacheLookups counts worksheet listing lookups by result.
	SheetCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planilhas_sheet_cache_lookups_total",
			Help: "Worksheet listing cache lookups",
		},
		[]string{"result"},
	)
)

// RecordSubmission records metrics for one classified reply.
func RecordSubmission(outcome string, duration float64) {
	SubmissionDuration.WithLabelValues(outcome).Observe(duration)
	SubmissionsTotal.WithLabelValues(outcome).Inc()
}
