package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initWriteMetrics() {
	r.WriteBatchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_write_batches_total",
			Help: "Total number of write-back batches submitted",
		},
		[]string{"algorithm", "status"},
	)

	r.WriteMutationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphalgo_write_mutations_total",
			Help: "Total number of mutations submitted to the store",
		},
	)

	r.CommunityEntitiesCreated = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_community_entities_created_total",
			Help: "Total number of community entities created",
		},
		[]string{"algorithm"},
	)
}

func (r *Registry) initSchedulerMetrics() {
	r.ScheduledRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_scheduled_runs_total",
			Help: "Total number of scheduled pipeline runs",
		},
		[]string{"job", "status"},
	)
}
