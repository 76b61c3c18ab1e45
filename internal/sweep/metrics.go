package sweep

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks sweep runs.
type Metrics struct {
	Runs        *prometheus.CounterVec
	Duration    prometheus.Histogram
	LastSuccess prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		Runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_sla_sweep_runs_total",
			Help: "Total SLA sweep runs by result",
		}, []string{"result"}),
		Duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "opsdesk_sla_sweep_duration_seconds",
			Help:    "Duration of an SLA sweep",
			Buckets: prometheus.DefBuckets,
		}),
		LastSuccess: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "opsdesk_sla_sweep_last_success_timestamp_seconds",
			Help: "Unix time of the last successful SLA sweep",
		}),
	}
}

func (m *Metrics) observe(at time.Time, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Duration.Observe(d.Seconds())
	if err != nil {
		m.Runs.WithLabelValues("error").Inc()
		return
	}
	m.Runs.WithLabelValues("ok").Inc()
	m.LastSuccess.Set(float64(at.Unix()))
}
