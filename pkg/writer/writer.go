// Package writer persists algorithm output back into the graph store.
// Scalar results go out as batched attribute mutations; community entities
// are synthesized one at a time so a partial community set is never left
// behind silently.
package writer

import (
	"context"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-graph-analytics/pkg/algorithms"
	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/metrics"
	"github.com/dd0wney/cluso-graph-analytics/pkg/store"
)

// DefaultBatchSize is how many scalar mutations go into one store round
// trip.
const DefaultBatchSize = 100

// Writer implements algorithms.ResultWriter on top of a store.
type Writer struct {
	store     store.Store
	logger    logging.Logger
	metrics   *metrics.Registry
	batchSize int
}

// Option configures a Writer.
type Option func(*Writer)

// WithBatchSize overrides the scalar write batch size. Values below 1 are
// ignored.
func WithBatchSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(w *Writer) {
		w.metrics = m
	}
}

// New creates a writer over the given store. A nil logger disables logging.
func New(s store.Store, logger logging.Logger, opts ...Option) *Writer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	w := &Writer{
		store:     s,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteScalarResults writes one attribute mutation per node: the score under
// "<algorithm>_score" plus run metadata under "<algorithm>_<field>" keys.
// Mutations are submitted in batches; a failed batch fails the call but does
// not roll back batches already submitted.
func (w *Writer) WriteScalarResults(ctx context.Context, algorithm string, result algorithms.Result, meta algorithms.Metadata) error {
	if len(result) == 0 {
		return nil
	}

	metaAttrs := make(map[string]any, 5)
	for field, value := range meta.Attrs() {
		metaAttrs[algorithm+"_"+field] = value
	}
	scoreKey := algorithm + "_score"

	ids := make([]string, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	mutations := make([]store.Mutation, 0, len(ids))
	for _, id := range ids {
		attrs := make(map[string]any, len(metaAttrs)+1)
		attrs[scoreKey] = result[id]
		for k, v := range metaAttrs {
			attrs[k] = v
		}
		mutations = append(mutations, store.Mutation{UID: id, Attrs: attrs})
	}

	batches := 0
	for start := 0; start < len(mutations); start += w.batchSize {
		end := start + w.batchSize
		if end > len(mutations) {
			end = len(mutations)
		}
		batch := mutations[start:end]

		if _, err := w.store.Persist(ctx, batch); err != nil {
			w.recordBatch(algorithm, "error", len(batch))
			w.logger.Error("result batch write failed",
				logging.Algorithm(algorithm),
				logging.Int("batch", batches),
				logging.Int("mutations", len(batch)),
				logging.Error(err),
			)
			return fmt.Errorf("writing %s results, batch %d: %w", algorithm, batches, err)
		}
		w.recordBatch(algorithm, "ok", len(batch))
		batches++
	}

	w.logger.Info("wrote scalar results",
		logging.Algorithm(algorithm),
		logging.Count(len(mutations)),
		logging.Int("batches", batches),
	)
	return nil
}

// CreateCommunityEntities creates one entity per community, each submitted
// as its own mutation. The first failure aborts the call: entities created
// before the failure stand, but no UID map is returned.
func (w *Writer) CreateCommunityEntities(ctx context.Context, algorithm string, partition algorithms.Partition, meta algorithms.Metadata) (map[int]string, error) {
	if len(partition) == 0 {
		return map[int]string{}, nil
	}

	members := make(map[int][]string)
	for id, community := range partition {
		members[community] = append(members[community], id)
	}

	labels := make([]int, 0, len(members))
	for label := range members {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	runTag := meta.RunID
	if runTag == "" {
		runTag = meta.Timestamp.UTC().Format("20060102T150405Z")
	}

	uids := make(map[int]string, len(labels))
	for _, label := range labels {
		ids := members[label]
		sort.Strings(ids)

		name := fmt.Sprintf("%s_community_%d_%s", algorithm, label, runTag)
		attrs := map[string]any{
			"algorithm":    algorithm,
			"community_id": label,
			"member_count": len(ids),
		}
		for field, value := range meta.Attrs() {
			attrs[field] = value
		}

		assigned, err := w.store.Persist(ctx, []store.Mutation{{
			Type:    "Community",
			Name:    name,
			Attrs:   attrs,
			Members: ids,
		}})
		if err != nil {
			w.logger.Error("community entity creation failed",
				logging.Algorithm(algorithm),
				logging.Int("community", label),
				logging.Error(err),
			)
			return nil, fmt.Errorf("creating community %d for %s: %w", label, algorithm, err)
		}
		uids[label] = assigned[name]
	}

	if w.metrics != nil {
		w.metrics.RecordCommunityEntities(algorithm, len(uids))
	}
	w.logger.Info("created community entities",
		logging.Algorithm(algorithm),
		logging.Count(len(uids)),
	)
	return uids, nil
}

func (w *Writer) recordBatch(algorithm, status string, mutations int) {
	if w.metrics != nil {
		w.metrics.RecordWriteBatch(algorithm, status, mutations)
	}
}
