package ivc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts folds and times their stages. Folds are not labelled by
// kind, so the metrics do not reveal the chain length.
type Metrics struct {
	folds    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the chain metrics with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		folds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grapevine_folds_total",
			Help: "Folds attempted, by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grapevine_fold_stage_seconds",
			Help:    "Time spent per fold stage",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
	}
	for _, c := range []prometheus.Collector{m.folds, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) fold(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.folds.WithLabelValues(outcome).Inc()
}
