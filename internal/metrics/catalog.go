package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and catalog Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pixdex",
			Name:      "searches_total",
			Help:      "Total number of similarity searches",
		},
		[]string{"outcome"}, // ok, invalid_image, encoder_error, internal
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pixdex",
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	CatalogEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pixdex",
			Name:      "catalog_entries",
			Help:      "Number of entries in the current catalog snapshot",
		},
	)

	CatalogBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pixdex",
			Name:      "catalog_builds_total",
			Help:      "Total number of catalog builds",
		},
		[]string{"outcome"}, // ok, error
	)

	CatalogBuildSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pixdex",
			Name:      "catalog_build_skipped_total",
			Help:      "Total catalog entries skipped during builds",
		},
	)

	CatalogBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pixdex",
			Name:      "catalog_build_duration_seconds",
			Help:      "Catalog build duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers Prometheus search and catalog metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(CatalogEntries)
	prometheus.MustRegister(CatalogBuildsTotal)
	prometheus.MustRegister(CatalogBuildSkippedTotal)
	prometheus.MustRegister(CatalogBuildDuration)
	catalogMetricsRegistered = true
}
