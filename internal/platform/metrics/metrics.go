package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the profiling service.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	DraftsSaved        prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	SubmitDuration     prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "offsite_wizard_sessions_started_total",
			Help: "Total number of profiling wizard sessions started",
		}),
		DraftsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "offsite_drafts_saved_total",
			Help: "Total number of profiling drafts saved",
		}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "offsite_step_validation_failures_total",
			Help: "Step validation failures blocking forward navigation, by step",
		}, []string{"step"}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "offsite_submissions_total",
			Help: "Submission attempts by outcome (accepted, rejected, failed)",
		}, []string{"outcome"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "offsite_submit_duration_seconds",
			Help:    "End-to-end latency of the submit pipeline",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveSubmit records one submit pipeline run.
func (m *Metrics) ObserveSubmit(outcome string, d time.Duration) {
	m.Submissions.WithLabelValues(outcome).Inc()
	m.SubmitDuration.Observe(d.Seconds())
}
