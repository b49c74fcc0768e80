package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoplaces",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geoplaces",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Place metrics
	NearestQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoplaces",
		Subsystem: "places",
		Name:      "nearest_queries_total",
		Help:      "Nearest-place queries by outcome (found, not_found, invalid, error)",
	}, []string{"outcome"})

	PlaceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoplaces",
		Subsystem: "places",
		Name:      "writes_total",
		Help:      "Successful place writes by operation",
	}, []string{"operation"})

	DuplicateGeometryRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geoplaces",
		Subsystem: "places",
		Name:      "duplicate_geometry_rejections_total",
		Help:      "Writes rejected because another place has the same geometry",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoplaces",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoplaces",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)
