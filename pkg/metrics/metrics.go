package metrics

import "time"

// RecordAlgorithmRun records one algorithm execution.
func (r *Registry) RecordAlgorithmRun(algorithm, status string, duration time.Duration, resultCount int) {
	r.AlgorithmRunsTotal.WithLabelValues(algorithm, status).Inc()
	r.AlgorithmDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	r.AlgorithmResultCount.WithLabelValues(algorithm).Observe(float64(resultCount))
}

// RecordGraphBuild records one graph construction.
func (r *Registry) RecordGraphBuild(duration time.Duration, nodes, edges int) {
	r.GraphBuildsTotal.Inc()
	r.GraphBuildDuration.Observe(duration.Seconds())
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// RecordWriteBatch records one write-back batch submission.
func (r *Registry) RecordWriteBatch(algorithm, status string, mutations int) {
	r.WriteBatchesTotal.WithLabelValues(algorithm, status).Inc()
	r.WriteMutationsTotal.Add(float64(mutations))
}

// RecordCommunityEntities records created community entities.
func (r *Registry) RecordCommunityEntities(algorithm string, count int) {
	r.CommunityEntitiesCreated.WithLabelValues(algorithm).Add(float64(count))
}

// RecordScheduledRun records one scheduler job execution.
func (r *Registry) RecordScheduledRun(job, status string) {
	r.ScheduledRunsTotal.WithLabelValues(job, status).Inc()
}
