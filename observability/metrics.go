package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "caplock",
			Subsystem: "registry",
			Name:      "registrations_total",
			Help:      "Total allocations registered.",
		},
	)
	revocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caplock",
			Subsystem: "registry",
			Name:      "revocations_total",
			Help:      "Total revocations by trigger source.",
		},
		[]string{"source"},
	)
	removals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "caplock",
			Subsystem: "registry",
			Name:      "removals_total",
			Help:      "Total entries removed on legitimate free.",
		},
	)
	checks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caplock",
			Subsystem: "registry",
			Name:      "checks_total",
			Help:      "Capability checks by outcome (ok or failure kind).",
		},
		[]string{"outcome"},
	)
)

// RegisterMetrics installs the runtime collectors; idempotent.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(registrations, revocations, removals, checks)
	})
}

// RecordRegistration counts one successful registration.
func RecordRegistration() {
	RegisterMetrics()
	registrations.Inc()
}

// RecordRevocation counts one revocation attributed to its trigger source.
func RecordRevocation(source string) {
	RegisterMetrics()
	revocations.WithLabelValues(source).Inc()
}

// RecordRemoval counts one entry removal.
func RecordRemoval() {
	RegisterMetrics()
	removals.Inc()
}

// RecordCheck counts one capability check with its outcome: "ok" or the
// violation kind.
func RecordCheck(outcome string) {
	RegisterMetrics()
	checks.WithLabelValues(outcome).Inc()
}
