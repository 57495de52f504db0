package build

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waymarker_build_runs_total",
		Help: "Completed build runs by scope and result",
	}, []string{"scope", "result"})

	buildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "waymarker_build_duration_seconds",
		Help:    "Wall clock duration of build runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"scope"})

	renderedItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waymarker_build_rendered_items_total",
		Help: "Artifacts written across all build runs",
	})

	failedItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waymarker_build_failed_items_total",
		Help: "Per-item render failures across all build runs",
	})

	recordedEdgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waymarker_build_recorded_edges_total",
		Help: "Dependency edges written during scanning",
	})
)
