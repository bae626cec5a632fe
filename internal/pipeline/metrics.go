package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storybook_pipeline_runs_total",
		Help: "Terminal outcomes of story generation runs.",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storybook_pipeline_duration_seconds",
		Help:    "End-to-end story generation time.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	degradedPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storybook_degraded_pages_total",
		Help: "Pages delivered without an illustration after exhausting retries.",
	})
)
