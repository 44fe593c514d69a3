// Package metrics holds the Prometheus collectors for the live pricing controller
// and the fixture API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "option_live"

// Controller counts what happens to debounced recompute cycles.
type Controller struct {
	Attempts       prometheus.Counter
	SkippedInvalid prometheus.Counter
	Failures       *prometheus.CounterVec
	StaleDiscarded prometheus.Counter
	Rendered       prometheus.Counter
	RoundTrip      prometheus.Histogram
}

// NewController creates the controller collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewController(reg prometheus.Registerer) *Controller {
	m := &Controller{
		Attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "requests_issued_total",
			Help:      "Recompute requests sent to the calculation service.",
		}),
		SkippedInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "cycles_skipped_total",
			Help:      "Debounced cycles aborted because an input was not a positive number.",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "request_failures_total",
			Help:      "Failed calculation requests by kind.",
		}, []string{"kind"}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "stale_responses_total",
			Help:      "Responses dropped because a newer request had been issued.",
		}),
		Rendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "renders_total",
			Help:      "Results written to the page.",
		}),
		RoundTrip: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "round_trip_seconds",
			Help:      "Calculation request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Attempts, m.SkippedInvalid, m.Failures, m.StaleDiscarded, m.Rendered, m.RoundTrip)
	}
	return m
}

// API counts fixture lookups on the fixture pricing server.
type API struct {
	Requests *prometheus.CounterVec
}

// NewAPI creates the fixture API collectors and registers them on reg.
func NewAPI(reg prometheus.Registerer) *API {
	m := &API{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fixture_api",
			Name:      "calculate_requests_total",
			Help:      "Calculate requests by outcome (hit, miss, invalid, status).",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests)
	}
	return m
}
