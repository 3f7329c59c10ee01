package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all prometheus collectors for the analytics pipeline.
type Registry struct {
	registry *prometheus.Registry

	// Algorithm metrics
	AlgorithmRunsTotal   *prometheus.CounterVec
	AlgorithmDuration    *prometheus.HistogramVec
	AlgorithmResultCount *prometheus.HistogramVec

	// Graph build metrics
	GraphBuildsTotal   prometheus.Counter
	GraphBuildDuration prometheus.Histogram
	GraphNodes         prometheus.Gauge
	GraphEdges         prometheus.Gauge

	// Write-back metrics
	WriteBatchesTotal        *prometheus.CounterVec
	WriteMutationsTotal      prometheus.Counter
	CommunityEntitiesCreated *prometheus.CounterVec

	// Scheduler metrics
	ScheduledRunsTotal *prometheus.CounterVec
}

// NewRegistry creates a registry with all collectors initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initAlgorithmMetrics()
	r.initGraphMetrics()
	r.initWriteMetrics()
	r.initSchedulerMetrics()

	return r
}

// Handler returns an HTTP handler exposing the registry's metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
