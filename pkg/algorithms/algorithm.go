package algorithms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/metrics"
)

// Algorithm is a single computation over a graph. Implementations are
// stateless; all per-run bookkeeping lives in the Runner that wraps them.
type Algorithm interface {
	Name() string
	Compute(g *graph.Graph, params Params) (Result, error)
}

// ResultWriter persists algorithm output. pkg/writer provides the
// implementation; the interface lives here so the contract has no dependency
// on storage details.
type ResultWriter interface {
	// WriteScalarResults persists a node-to-value mapping as per-node
	// attribute mutations. An error means at least one batch failed;
	// already-submitted batches stand.
	WriteScalarResults(ctx context.Context, algorithm string, result Result, meta Metadata) error

	// CreateCommunityEntities synthesizes one entity per community and
	// returns the assigned UIDs by community label. Any failure aborts the
	// whole call.
	CreateCommunityEntities(ctx context.Context, algorithm string, partition Partition, meta Metadata) (map[int]string, error)
}

// RunOptions configures one contract invocation.
type RunOptions struct {
	WriteBack            bool
	Writer               ResultWriter
	CreateCommunityNodes bool
	Params               Params
	RunID                string
}

// RunOutcome pairs a result with the metadata describing how it was
// produced.
type RunOutcome struct {
	Result   Result   `json:"results"`
	Metadata Metadata `json:"metadata"`
}

// Runner wraps an Algorithm with the uniform run contract: timing, the
// empty-graph guard, failure capture, metadata synthesis and write-back
// dispatch. A failure in one Runner never propagates to its siblings.
type Runner struct {
	algo    Algorithm
	logger  logging.Logger
	metrics *metrics.Registry

	mu           sync.Mutex
	lastRunTime  time.Time
	lastDuration time.Duration
	lastCount    int
}

// NewRunner wraps an algorithm. logger and registry may be nil.
func NewRunner(algo Algorithm, logger logging.Logger, registry *metrics.Registry) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{
		algo:    algo,
		logger:  logger.With(logging.Algorithm(algo.Name())),
		metrics: registry,
	}
}

// Name returns the wrapped algorithm's name.
func (r *Runner) Name() string {
	return r.algo.Name()
}

// Run executes the algorithm under the contract. It never returns an error:
// compute failures are absorbed into the metadata so batch runs can report
// partial success.
func (r *Runner) Run(ctx context.Context, g *graph.Graph, opts RunOptions) RunOutcome {
	start := time.Now()

	r.mu.Lock()
	r.lastRunTime = start
	r.mu.Unlock()

	meta := Metadata{
		Algorithm:  r.algo.Name(),
		GraphNodes: g.NodeCount(),
		GraphEdges: g.EdgeCount(),
		Timestamp:  start,
		RunID:      opts.RunID,
	}

	if g.NodeCount() == 0 {
		r.logger.Warn("empty graph provided")
		meta.EmptyGraph = true
		meta.DurationSeconds = time.Since(start).Seconds()
		return RunOutcome{Result: Result{}, Metadata: meta}
	}

	r.logger.Info("starting algorithm",
		logging.Int("graph_nodes", g.NodeCount()),
		logging.Int("graph_edges", g.EdgeCount()),
	)

	result, err := r.compute(g, opts.Params)
	elapsed := time.Since(start)
	meta.DurationSeconds = elapsed.Seconds()

	if err != nil {
		r.logger.Error("algorithm failed",
			logging.Error(err),
			logging.Duration("elapsed", elapsed),
		)
		meta.Error = err.Error()
		r.record(elapsed, 0, "error")
		return RunOutcome{Result: Result{}, Metadata: meta}
	}

	meta.ResultCount = len(result)
	r.record(elapsed, len(result), "success")

	r.logger.Info("algorithm completed",
		logging.Duration("elapsed", elapsed),
		logging.Count(len(result)),
	)

	if opts.WriteBack && opts.Writer != nil {
		written := opts.Writer.WriteScalarResults(ctx, r.algo.Name(), result, meta) == nil
		meta.WrittenToStore = &written

		if opts.CreateCommunityNodes && len(result) > 0 {
			uids, err := opts.Writer.CreateCommunityEntities(ctx, r.algo.Name(), result.Partition(), meta)
			if err != nil {
				r.logger.Error("community entity creation failed", logging.Error(err))
				meta.CommunityCreationError = err.Error()
			} else {
				created := len(uids)
				meta.CommunitiesCreated = &created
				meta.CommunityUIDs = uids
				r.logger.Info("created community entities", logging.Count(created))
			}
		}
	}

	return RunOutcome{Result: result, Metadata: meta}
}

// compute invokes the algorithm, converting panics into errors so one
// misbehaving computation cannot abort a batch run.
func (r *Runner) compute(g *graph.Graph, params Params) (result Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("compute panicked: %v", p)
		}
	}()
	return r.algo.Compute(g, params)
}

func (r *Runner) record(elapsed time.Duration, count int, status string) {
	r.mu.Lock()
	r.lastDuration = elapsed
	r.lastCount = count
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordAlgorithmRun(r.algo.Name(), status, elapsed, count)
	}
}

// Statistics returns the timing of the most recent invocation. The slot is
// overwritten on every run; no history is kept.
func (r *Runner) Statistics() Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Statistics{
		Name:        r.algo.Name(),
		LastRunTime: r.lastRunTime,
		LastRunFor:  r.lastDuration,
		LastCount:   r.lastCount,
	}
}
