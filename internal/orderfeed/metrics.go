package orderfeed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// EventsReceivedTotal tracks user channel order events by lifecycle type.
	EventsReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clob_bridge_orderfeed_events_total",
		Help: "Total number of user channel order events by type",
	}, []string{"type"})
)
