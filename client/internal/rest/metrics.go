package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeSuccess   = "success"
	outcomeHTTPError = "http_error"
	outcomeNetwork   = "network_error"
	outcomeTimeout   = "timeout"
	outcomeCanceled  = "canceled"
	outcomeParse     = "parse_error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wellbeing_client",
			Name:      "requests_total",
			Help:      "Logical API calls by method and final outcome.",
		},
		[]string{"method", "outcome"},
	)

	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wellbeing_client",
			Name:      "attempts_total",
			Help:      "HTTP attempts issued, including retries.",
		},
		[]string{"method"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wellbeing_client",
			Name:      "retries_total",
			Help:      "Backoff waits scheduled after a failed attempt.",
		},
		[]string{"method"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wellbeing_client",
			Name:      "request_duration_seconds",
			Help:      "Wall time of a logical call including backoff waits.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)
)
