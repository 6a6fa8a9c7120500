// Package metrics holds the Prometheus instruments for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	GroupsCreated        prometheus.Counter
	PaymentsAccepted     prometheus.Counter
	PaymentsRejected     *prometheus.CounterVec
	SettlementsCompleted prometheus.Counter
	UnitsWithdrawn       prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		GroupsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitvault_groups_created_total",
			Help: "Total number of expense groups created",
		}),
		PaymentsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitvault_payments_accepted_total",
			Help: "Total number of accepted join-and-pay calls",
		}),
		PaymentsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "splitvault_payments_rejected_total",
			Help: "Total number of rejected join-and-pay calls by reason",
		}, []string{"reason"}),
		SettlementsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitvault_settlements_completed_total",
			Help: "Total number of completed settlements",
		}),
		UnitsWithdrawn: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitvault_units_withdrawn_total",
			Help: "Total native base units withdrawn by organizers",
		}),
	}
}
