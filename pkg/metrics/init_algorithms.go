package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAlgorithmMetrics() {
	r.AlgorithmRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_algorithm_runs_total",
			Help: "Total number of algorithm runs",
		},
		[]string{"algorithm", "status"},
	)

	r.AlgorithmDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphalgo_algorithm_duration_seconds",
			Help:    "Algorithm execution duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 60.0, 300.0},
		},
		[]string{"algorithm"},
	)

	r.AlgorithmResultCount = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphalgo_algorithm_result_count",
			Help:    "Number of node results produced per run",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		},
		[]string{"algorithm"},
	)
}

func (r *Registry) initGraphMetrics() {
	r.GraphBuildsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphalgo_graph_builds_total",
			Help: "Total number of graph builds",
		},
	)

	r.GraphBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphalgo_graph_build_duration_seconds",
			Help:    "Graph build duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphalgo_graph_nodes",
			Help: "Node count of the most recently built graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphalgo_graph_edges",
			Help: "Edge count of the most recently built graph",
		},
	)
}
