package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeDenied  = "denied"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

var (
	// AdminActions counts admin operations by action and outcome
	AdminActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whitelist_admin_actions_total",
			Help: "Total number of admin actions",
		},
		[]string{"action", "outcome"},
	)

	// RequestDuration tracks admin request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whitelist_admin_request_duration_seconds",
			Help:    "Admin request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// FlashStoreErrors counts failed flash reads and writes
	FlashStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whitelist_admin_flash_errors_total",
			Help: "Total number of flash store errors",
		},
		[]string{"driver", "op"},
	)
)

// Action records one admin action outcome.
func Action(action, outcome string) {
	AdminActions.WithLabelValues(action, outcome).Inc()
}
