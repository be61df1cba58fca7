package slackhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// result: sent | rejected | failed
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "awstoslack",
		Subsystem: "slack",
		Name:      "deliveries_total",
		Help:      "Messages handed to the Slack webhook, by result",
	}, []string{"result"})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "awstoslack",
		Subsystem: "slack",
		Name:      "retries_total",
		Help:      "Webhook POSTs retried after a transport error or 5xx",
	})

	deliveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "awstoslack",
		Subsystem: "slack",
		Name:      "request_duration_seconds",
		Help:      "Duration of a single webhook POST",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)
