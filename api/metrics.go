package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors the handlers update.
type Metrics struct {
	Operations      *prometheus.CounterVec
	UploadedBytes   prometheus.Counter
	RecordsDeleted  *prometheus.CounterVec
	RenewalsPending prometheus.Gauge
	BirthdaysToday  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insurance_dashboard_operations_total",
			Help: "Record operations handled, by operation and outcome",
		}, []string{"operation", "outcome"}),
		UploadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "insurance_dashboard_uploaded_bytes_total",
			Help: "Total size of uploaded client documents",
		}),
		RecordsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insurance_dashboard_records_deleted_total",
			Help: "Records deleted, by kind",
		}, []string{"kind"}),
		RenewalsPending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "insurance_dashboard_renewals_pending",
			Help: "Policies due for renewal as of the last reminder check",
		}),
		BirthdaysToday: factory.NewGauge(prometheus.GaugeOpts{
			Name: "insurance_dashboard_birthdays_today",
			Help: "Clients whose birthday is today, as of the last reminder check",
		}),
	}
}

// Observe counts one operation with its outcome.
func (m *Metrics) Observe(operation string, err error) {
	m.Operations.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	status, _ := classify(err)
	switch status {
	case 400:
		return "invalid"
	case 404:
		return "not_found"
	case 409:
		return "conflict"
	default:
		return "error"
	}
}
