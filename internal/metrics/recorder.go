// Package metrics exposes sync outcomes as Prometheus metrics for the
// daemon's scrape endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Recorder records per-source sync outcomes.
type Recorder struct {
	runs         *prometheus.CounterVec
	rowsWritten  *prometheus.CounterVec
	recordErrors *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewRecorder creates a recorder and registers its collectors.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "revpipe",
			Name:      "sync_runs_total",
			Help:      "Per-source sync attempts by terminal state.",
		}, []string{"source", "state"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "revpipe",
			Name:      "rows_written_total",
			Help:      "Rows newly written or changed in the sink.",
		}, []string{"source"}),
		recordErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "revpipe",
			Name:      "record_errors_total",
			Help:      "Records skipped because they failed to normalise.",
		}, []string{"source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "revpipe",
			Name:      "sync_duration_seconds",
			Help:      "Wall time spent syncing one source.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"source"}),
	}
	reg.MustRegister(r.runs, r.rowsWritten, r.recordErrors, r.duration)
	return r
}

// ObserveSync records one per-source outcome.
func (r *Recorder) ObserveSync(result domain.SyncResult) {
	source := string(result.Source)
	r.runs.WithLabelValues(source, string(result.State)).Inc()
	r.rowsWritten.WithLabelValues(source).Add(float64(result.Rows))
	r.recordErrors.WithLabelValues(source).Add(float64(result.RecordErrors))
	r.duration.WithLabelValues(source).Observe(result.Elapsed.Seconds())
}
