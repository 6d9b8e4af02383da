package order

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// SubmitDuration tracks order submission latency.
	SubmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clob_bridge_order_submit_duration_seconds",
		Help:    "Duration of order submission to the CLOB API",
		Buckets: prometheus.DefBuckets,
	})

	// SubmissionsTotal tracks submission verdicts by outcome.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clob_bridge_order_submissions_total",
		Help: "Total number of order submissions by verdict",
	}, []string{"verdict"})
)
