package intake

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels a finished submission.
type Outcome string

// Possible values for Outcome
const (
	OutcomeAccepted        Outcome = "accepted"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeInvalid         Outcome = "invalid"
	OutcomeUploadFailed    Outcome = "upload_failed"
	OutcomeRecordFailed    Outcome = "record_failed"
)

// Observer captures telemetry for submissions.
type Observer interface {
	RecordSubmission(outcome Outcome, duration time.Duration)
	RecordUpload(sizeBytes int64, err error)
}

type nopObserver struct{}

func (nopObserver) RecordSubmission(Outcome, time.Duration) {}
func (nopObserver) RecordUpload(int64, error)               {}

// PrometheusObserver exports submission metrics to Prometheus.
type PrometheusObserver struct {
	submissions  *prometheus.CounterVec
	duration     prometheus.Histogram
	uploadBytes  prometheus.Counter
	uploadErrors prometheus.Counter
}

// NewPrometheusObserver registers the intake metrics on reg.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "artisan_intake"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Service request submissions by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Latency of service request submissions.",
			Buckets:   prometheus.DefBuckets,
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Attachment bytes successfully written to the object store.",
		}),
		uploadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_errors_total",
			Help:      "Attachment uploads that failed.",
		}),
	}
	collectors := []prometheus.Collector{o.submissions, o.duration, o.uploadBytes, o.uploadErrors}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register intake metric: %w", err)
		}
	}
	return o, nil
}

// RecordSubmission counts a submission and its latency.
func (o *PrometheusObserver) RecordSubmission(outcome Outcome, duration time.Duration) {
	o.submissions.WithLabelValues(string(outcome)).Inc()
	o.duration.Observe(duration.Seconds())
}

// RecordUpload tracks attachment size and failures.
func (o *PrometheusObserver) RecordUpload(sizeBytes int64, err error) {
	if err != nil {
		o.uploadErrors.Inc()
		return
	}
	if sizeBytes > 0 {
		o.uploadBytes.Add(float64(sizeBytes))
	}
}
