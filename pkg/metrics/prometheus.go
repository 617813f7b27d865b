package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	queryLatency    *prometheus.HistogramVec
	queryErrors     *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	alertsPublished *prometheus.CounterVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a recorder registered on reg.
func NewWith(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		queryLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricesignal_store_query_duration_seconds",
				Help:    "Duration of price store queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		queryErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricesignal_store_query_errors_total",
				Help: "Total number of failed price store queries",
			},
			[]string{"operation"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricesignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		alertsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricesignal_alerts_published_total",
				Help: "Total number of alert messages published",
			},
			[]string{"kind"},
		),
	}
}

// RecordQuery records a store query and its outcome.
func (r *Recorder) RecordQuery(op string, seconds float64, err error) {
	r.queryLatency.WithLabelValues(op).Observe(seconds)
	if err != nil {
		r.queryErrors.WithLabelValues(op).Inc()
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordAlertsPublished counts published alert messages by kind.
func (r *Recorder) RecordAlertsPublished(kind string, n int) {
	if n <= 0 {
		return
	}
	r.alertsPublished.WithLabelValues(kind).Add(float64(n))
}
