package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "awstoslack",
		Subsystem: "dispatch",
		Name:      "records_total",
		Help:      "Records processed, after splitting batched payloads",
	})

	// outcome: rendered | suppressed | nomatch
	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "awstoslack",
		Subsystem: "dispatch",
		Name:      "outcomes_total",
		Help:      "Dispatch outcomes by deciding interpreter",
	}, []string{"interpreter", "outcome"})

	// stage: matches | render | record
	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "awstoslack",
		Subsystem: "dispatch",
		Name:      "failures_total",
		Help:      "Recovered errors and panics",
	}, []string{"interpreter", "stage"})

	overlapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "awstoslack",
		Subsystem: "dispatch",
		Name:      "overlaps_total",
		Help:      "Envelopes matched by more than one specific interpreter",
	}, []string{"winner", "shadowed"})

	selectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "awstoslack",
		Subsystem: "dispatch",
		Name:      "select_duration_seconds",
		Help:      "Time spent selecting and rendering for one record",
		Buckets:   prometheus.DefBuckets,
	})
)
