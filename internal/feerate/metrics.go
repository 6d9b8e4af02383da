package feerate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// FetchDuration tracks fee rate API fetch latency.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clob_bridge_fee_rate_fetch_duration_seconds",
		Help:    "Duration of fee rate fetch from CLOB API",
		Buckets: prometheus.DefBuckets,
	})

	// FetchesTotal tracks successful fee rate fetches.
	FetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clob_bridge_fee_rate_fetches_total",
		Help: "Total number of successful fee rate fetches",
	})

	// FetchErrorsTotal tracks fee rate fetch failures.
	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clob_bridge_fee_rate_fetch_errors_total",
		Help: "Total number of fee rate fetch errors",
	})

	// CoalescedWaitsTotal tracks resolves that shared another caller's
	// in-flight fetch instead of issuing their own.
	CoalescedWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clob_bridge_fee_rate_coalesced_waits_total",
		Help: "Total number of fee rate resolves coalesced onto an in-flight fetch",
	})
)
