package miner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports mining throughput to Prometheus. All sessions sharing a
// Metrics value add to the same collectors.
type Metrics struct {
	Attempts      prometheus.Counter
	HashRate      prometheus.Gauge
	ActiveWorkers prometheus.Gauge
	Sessions      *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Attempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hookminer",
			Name:      "candidates_tested_total",
			Help:      "Total number of salts derived and tested",
		}),
		HashRate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hookminer",
			Name:      "hash_rate",
			Help:      "Salts tested per second by the most recently reporting session",
		}),
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hookminer",
			Name:      "active_workers",
			Help:      "Workers currently iterating a salt range",
		}),
		Sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hookminer",
			Name:      "sessions_total",
			Help:      "Finished mining sessions by outcome",
		}, []string{"outcome"}),
	}
}
