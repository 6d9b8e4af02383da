package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// TaskDuration tracks end-to-end pipeline latency per task.
	TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clob_bridge_task_duration_seconds",
		Help:    "Duration of one bridge task end to end",
		Buckets: prometheus.DefBuckets,
	})

	// TasksTotal tracks completed tasks by outcome.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clob_bridge_tasks_total",
		Help: "Total number of bridge tasks by outcome",
	}, []string{"outcome"})
)
