// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BrowseRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "browse_requests_total",
			Help: "Total number of browse requests by outcome",
		},
		[]string{"status"},
	)

	BrowseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "browse_duration_seconds",
			Help: "Duration of browse requests in seconds",
		},
	)

	BrowseZeroResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "browse_zero_results_total",
			Help: "Number of browse requests that matched no documents",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "browse_cache_requests_total",
			Help: "Browse cache lookups by outcome",
		},
		[]string{"result"},
	)

	DocumentsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_documents_indexed_total",
			Help: "Catalog documents indexed by outcome",
		},
		[]string{"status"},
	)
)
