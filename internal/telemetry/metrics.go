package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide collectors, registered on the default registry and exposed
// at /metrics.
var (
	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "officiantfinder_search_requests_total",
		Help: "Search requests served, labeled by search mode.",
	}, []string{"mode"})

	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "officiantfinder_geocode_requests_total",
		Help: "External geocoding calls, labeled by outcome.",
	}, []string{"outcome"})

	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "officiantfinder_sync_runs_total",
		Help: "Completed sync runs, labeled by final status.",
	}, []string{"status"})

	ListingsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "officiantfinder_listings_upserted_total",
		Help: "Listings written during sync runs.",
	})
)
