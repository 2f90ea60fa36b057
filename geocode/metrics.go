package geocode

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reverseRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wimb_geocode_reverse_requests_total",
		Help: "Total reverse geocoding calls issued.",
	})
	reverseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wimb_geocode_reverse_failures_total",
		Help: "Total reverse geocoding calls that failed.",
	})
	forwardRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wimb_geocode_forward_requests_total",
		Help: "Total forward geocoding calls issued.",
	})
	forwardFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wimb_geocode_forward_failures_total",
		Help: "Total forward geocoding calls that failed.",
	})
	noMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wimb_geocode_no_match_total",
		Help: "Total forward geocoding calls that returned an empty result set.",
	})
)
