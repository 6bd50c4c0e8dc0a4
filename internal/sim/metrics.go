package sim

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the world's Prometheus instruments.
type Metrics struct {
	BulletsAlive prometheus.Gauge
	BulletsFired prometheus.Counter
	RunnerErrors *prometheus.CounterVec
	StepDuration prometheus.Histogram
}

// NewMetrics creates the instruments and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BulletsAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bulletml_bullets_alive",
			Help: "Number of live bullets after the last frame",
		}),
		BulletsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulletml_bullets_fired_total",
			Help: "Total number of bullets created by fire commands",
		}),
		RunnerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulletml_runner_errors_total",
				Help: "Total number of runners stopped by a runtime error",
			},
			[]string{"code"},
		),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulletml_step_duration_seconds",
			Help:    "Wall time spent stepping one frame",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.BulletsAlive, m.BulletsFired, m.RunnerErrors, m.StepDuration)
	}
	return m
}
