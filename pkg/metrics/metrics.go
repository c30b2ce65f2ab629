package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. HTTP Requests Total (Counter)
	// Counts how many requests arrive, labeled by method, path, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nemadb_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"}, // Labels
	)

	// 2. HTTP Request Duration (Histogram)
	// Measures server response time.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nemadb_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// 3. Query Executions (Counter)
	// Counts executed subgraph searches by outcome: ok, truncated, error.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nemadb_queries_total",
			Help: "Total number of executed subgraph queries",
		},
		[]string{"outcome"},
	)

	// 4. Query Duration (Histogram)
	// End-to-end execution time: propagation plus search.
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "nemadb_query_duration_seconds",
			Help: "Duration of subgraph query execution in seconds",
			// Buckets covering from tiny staged queries to large searches.
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	// 5. Propagation Rounds (Histogram)
	// How many rounds the score refinement ran before converging.
	PropagationRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "nemadb_propagation_rounds",
			Help: "Number of score propagation rounds per query execution",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		},
	)

	// 6. Staged Graphs (Gauge)
	// Tracks the number of graphs currently held in the staging area.
	StagedGraphs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nemadb_graphs_total",
			Help: "Number of graphs currently staged",
		},
	)
)
