package zerog

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/evstack/zerog-da/da"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "zerog_da"
)

var verificationStatuses = []da.VerificationStatus{da.StatusVerified, da.StatusPending, da.StatusRejected}

// Metrics contains all metrics exposed by this package.
type Metrics struct {
	SubmitAttempts      metrics.Counter // DisperseBlob RPCs issued
	SubmitRetries       metrics.Counter // failed attempts that will be retried
	SubmitRejections    metrics.Counter // submissions refused by the disperser
	SubmissionsInFlight metrics.Gauge   // submissions holding an admission slot
	StatusPolls         metrics.Counter // GetBlobStatus RPCs issued while awaiting confirmation
	PublishDuration     metrics.Histogram

	VerifyOutcomes map[da.VerificationStatus]metrics.Counter
}

// PrometheusMetrics returns Metrics built using Prometheus client library
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}

	m := &Metrics{
		VerifyOutcomes: make(map[da.VerificationStatus]metrics.Counter),
	}

	m.SubmitAttempts = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: MetricsSubsystem,
		Name:      "submit_attempts_total",
		Help:      "Total number of DisperseBlob requests sent.",
	}, labels).With(labelsAndValues...)

	m.SubmitRetries = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: MetricsSubsystem,
		Name:      "submit_retries_total",
		Help:      "Total number of failed DisperseBlob requests that were retried.",
	}, labels).With(labelsAndValues...)

	m.SubmitRejections = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: MetricsSubsystem,
		Name:      "submit_rejections_total",
		Help:      "Total number of blobs refused by the disperser.",
	}, labels).With(labelsAndValues...)

	m.SubmissionsInFlight = prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: MetricsSubsystem,
		Name:      "submissions_in_flight",
		Help:      "Number of submissions currently admitted.",
	}, labels).With(labelsAndValues...)

	m.StatusPolls = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: MetricsSubsystem,
		Name:      "status_polls_total",
		Help:      "Total number of GetBlobStatus requests sent while awaiting confirmation.",
	}, labels).With(labelsAndValues...)

	m.PublishDuration = prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: MetricsSubsystem,
		Name:      "publish_duration_seconds",
		Help:      "Time from submission to confirmation of a blob.",
		Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	}, labels).With(labelsAndValues...)

	verifyOutcomes := prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: MetricsSubsystem,
		Name:      "verify_outcomes_total",
		Help:      "Total number of verification queries by outcome.",
	}, append(labels, "status"))
	for _, s := range verificationStatuses {
		m.VerifyOutcomes[s] = verifyOutcomes.With(append(labelsAndValues, "status", s.String())...)
	}

	return m
}

// NopMetrics returns no-op Metrics
func NopMetrics() *Metrics {
	m := &Metrics{
		SubmitAttempts:      discard.NewCounter(),
		SubmitRetries:       discard.NewCounter(),
		SubmitRejections:    discard.NewCounter(),
		SubmissionsInFlight: discard.NewGauge(),
		StatusPolls:         discard.NewCounter(),
		PublishDuration:     discard.NewHistogram(),
		VerifyOutcomes:      make(map[da.VerificationStatus]metrics.Counter),
	}
	for _, s := range verificationStatuses {
		m.VerifyOutcomes[s] = discard.NewCounter()
	}
	return m
}
