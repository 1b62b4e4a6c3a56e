// Package metrics exposes the gateway's prometheus collectors and the
// side listener that serves them.
//
// Collectors are package-level and registered once at init, so any
// internal package can record observations without carrying a registry
// handle. The /metrics endpoint never shares a listener with the API:
// it binds its own address and stays unreachable through the gateway's
// public surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts finished HTTP requests. The route label is
	// the registered pattern, not the raw path, so cardinality stays
	// bounded by the route table.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabard_requests_total",
			Help: "Total number of HTTP requests handled, by route, method, and status",
		},
		[]string{"route", "method", "status"},
	)

	// RequestDuration observes wall-clock request latency per route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabard_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds, by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// MirrorDeliveries counts terminal mirror outcomes: delivered,
	// dropped (retries exhausted), shed (circuit open), or rejected
	// (never enqueued).
	MirrorDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabard_mirror_deliveries_total",
			Help: "Terminal outcomes of mirror webhook deliveries, by outcome",
		},
		[]string{"outcome"},
	)

	// MirrorQueueDepth tracks events waiting for mirror delivery.
	MirrorQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabard_mirror_queue_depth",
			Help: "Number of events waiting in the mirror delivery queue",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		MirrorDeliveries,
		MirrorQueueDepth,
	)
}

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ListenAndServe serves /metrics on its own listener. It blocks, so
// callers run it on a dedicated goroutine.
func ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
