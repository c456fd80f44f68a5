// Package metrics exposes the process's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrustlineOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustline_operations_total",
			Help: "Trustline operations by kind and outcome",
		},
		[]string{"op", "outcome"},
	)

	TrustlineCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustline_cache_lookups_total",
			Help: "Trustline cache lookups by result",
		},
		[]string{"result"},
	)

	LedgerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_call_duration_seconds",
			Help:    "Duration of ledger client calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	IdentitiesStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "identities_stored",
			Help: "Number of identities currently loaded in the store",
		},
	)
)
