package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric exported by the service.
const Namespace = "assetshare"

// Search outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeUnsafe      = "unsafe"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Search pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "Total number of searches by outcome",
		},
		[]string{"outcome"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search pipeline duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	SearchUnmappedHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_unmapped_hits_total",
			Help:      "Backend hits dropped because they could not be mapped to an asset",
		},
	)

	PageConfigCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pageconfig_cache_total",
			Help:      "Page configuration cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerOnce sync.Once

// RegisterSearchMetrics registers the search and HTTP metrics with the default registry.
// Safe to call more than once.
func RegisterSearchMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SearchesTotal,
			SearchDuration,
			SearchUnmappedHitsTotal,
			PageConfigCacheTotal,
			httpRequestDuration,
			httpRequestsTotal,
			httpInFlight,
		)
	})
}
