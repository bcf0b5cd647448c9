package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const tracerName = "github.com/Cowspump/some-diploma-stuff/client"

var (
	authEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wellbeing_client",
			Name:      "auth_events_total",
			Help:      "Login, register, refresh and logout calls by outcome.",
		},
		[]string{"op", "outcome"},
	)

	sessionsBegun = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wellbeing_client",
			Name:      "sessions_begun_total",
			Help:      "Sessions started from a credential exchange.",
		},
	)
)

func recordAuth(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	authEventsTotal.WithLabelValues(op, outcome).Inc()
}
