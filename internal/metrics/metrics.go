package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OutboundRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_outbound_requests_total",
			Help: "Total number of calls made to remote services",
		},
		[]string{"service", "outcome"},
	)

	OutboundDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_outbound_duration_seconds",
			Help:    "Duration of calls made to remote services in seconds",
			Buckets: []float64{0.25, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"service"},
	)

	StreamEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_stream_events_total",
			Help: "Total number of chat stream events written, by kind",
		},
		[]string{"kind"},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_search_requests_total",
			Help: "Total number of search endpoint requests, by platform and outcome",
		},
		[]string{"platform", "outcome"},
	)
)

// ObserveOutbound records one remote call. It is meant to be deferred with
// the call's start time.
func ObserveOutbound(service string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	OutboundRequestsTotal.WithLabelValues(service, outcome).Inc()
	OutboundDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
