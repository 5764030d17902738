// Package monitor exposes Prometheus collectors for transform training.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"putransform/internal/transform"
)

type Metrics struct {
	Requests      *prometheus.CounterVec   // by HTTP status code
	Selections    *prometheus.CounterVec   // by winning transform
	Failures      prometheus.Counter
	TrainDuration *prometheus.HistogramVec // by transform
	CandidateAUC  *prometheus.GaugeVec     // last AUROC by transform
	InFlight      prometheus.Gauge
}

func New() *Metrics { return NewWithRegistry(prometheus.DefaultRegisterer) }

// NewWithRegistry registers the collectors on reg instead of the default
// registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "putransform_requests_total",
			Help: "Transform requests by status code",
		}, []string{"code"}),
		Selections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "putransform_selections_total",
			Help: "Times each transform was selected as optimal",
		}, []string{"transform"}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "putransform_failures_total",
			Help: "Selector runs aborted by a training error",
		}),
		TrainDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "putransform_train_seconds",
			Help:    "Wall time to train one transform",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"transform"}),
		CandidateAUC: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "putransform_candidate_auc",
			Help: "AUROC of the most recent run of each transform",
		}, []string{"transform"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "putransform_runs_in_flight",
			Help: "Selector runs currently training",
		}),
	}
}

// Observe is a selector progress hook.
func (m *Metrics) Observe(p transform.Progress) {
	if !p.Done { return }
	m.TrainDuration.WithLabelValues(p.Name).Observe(p.Elapsed.Seconds())
	m.CandidateAUC.WithLabelValues(p.Name).Set(p.AUC)
}

// Finished records the outcome of a selector run.
func (m *Metrics) Finished(rep transform.Report, err error) {
	if err != nil {
		m.Failures.Inc()
		return
	}
	m.Selections.WithLabelValues(rep.Best).Inc()
}
