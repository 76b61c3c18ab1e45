package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the dashboard read models.
type Metrics struct {
	// Unacknowledged notifications by severity, as of the last evaluation
	ActiveNotifications *prometheus.GaugeVec

	Acknowledgements prometheus.Counter

	// Briefs rendered by kind (shipment, daily)
	Briefs *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		ActiveNotifications: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opsdesk_notifications_active",
			Help: "Unacknowledged notifications by severity at the last evaluation",
		}, []string{"severity"}),

		Acknowledgements: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsdesk_notifications_acknowledged_total",
			Help: "Total notifications acknowledged by operators",
		}),

		Briefs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_briefs_generated_total",
			Help: "Total briefs generated by kind",
		}, []string{"kind"}),
	}
}

// SetActive replaces the gauge values. Severities missing from counts drop to zero.
func (m *Metrics) SetActive(counts map[string]int, severities []string) {
	if m == nil {
		return
	}
	for _, sev := range severities {
		m.ActiveNotifications.WithLabelValues(sev).Set(float64(counts[sev]))
	}
}

func (m *Metrics) IncAcknowledged() {
	if m != nil {
		m.Acknowledgements.Inc()
	}
}

func (m *Metrics) IncBrief(kind string) {
	if m != nil {
		m.Briefs.WithLabelValues(kind).Inc()
	}
}
