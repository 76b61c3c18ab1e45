package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for compliance checks.
type Metrics struct {
	// Check outcomes by status (cleared, flagged)
	Checks *prometheus.CounterVec

	// Findings by stable rule ID
	Findings *prometheus.CounterVec

	CheckLatency prometheus.Histogram
	BatchSize    prometheus.Histogram
}

// New creates a Metrics instance with all compliance metrics registered.
func New() *Metrics {
	return &Metrics{
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_compliance_checks_total",
			Help: "Total compliance checks by resulting status",
		}, []string{"status"}),

		Findings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_compliance_findings_total",
			Help: "Total compliance findings by rule",
		}, []string{"rule"}),

		CheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "opsdesk_compliance_check_duration_seconds",
			Help:    "Duration of a single compliance check including audit",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "opsdesk_compliance_batch_size",
			Help:    "Number of shipments per batch compliance request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

// ObserveCheck records one check outcome and its findings.
func (m *Metrics) ObserveCheck(status string, rules []string, d time.Duration) {
	if m == nil {
		return
	}
	m.Checks.WithLabelValues(status).Inc()
	for _, rule := range rules {
		m.Findings.WithLabelValues(rule).Inc()
	}
	m.CheckLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
