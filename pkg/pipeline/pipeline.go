// Package pipeline orchestrates a full analytics pass: fetch raw records
// from the store, build the graph, run the enabled algorithms and hand the
// results to the writer. Each pass gets a fresh run ID so results written in
// different passes can be told apart.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-graph-analytics/pkg/algorithms"
	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/metrics"
	"github.com/dd0wney/cluso-graph-analytics/pkg/store"
)

// Kind names which algorithm family a run covered.
type Kind string

const (
	KindCentrality Kind = "centrality"
	KindCommunity  Kind = "community"
)

// RunReport is the full record of one pipeline pass.
type RunReport struct {
	RunID      string                           `json:"run_id"`
	Kind       Kind                             `json:"kind"`
	StartedAt  time.Time                        `json:"started_at"`
	Duration   time.Duration                    `json:"duration"`
	GraphNodes int                              `json:"graph_nodes"`
	GraphEdges int                              `json:"graph_edges"`
	Outcomes   map[string]algorithms.RunOutcome `json:"outcomes"`

	// Analyses holds community structure summaries, keyed by algorithm.
	// Empty for centrality runs.
	Analyses map[string]algorithms.CommunityAnalysis `json:"analyses,omitempty"`
}

// Publisher announces completed runs. pkg/events provides the
// implementation.
type Publisher interface {
	PublishRunCompleted(report *RunReport) error
}

// Archiver stores full run reports. pkg/export provides the implementation.
type Archiver interface {
	ArchiveReport(ctx context.Context, report *RunReport) error
}

// Options fixes a pipeline's behavior across runs.
type Options struct {
	EntityType string
	FetchLimit int
	Build      graph.BuildOptions

	WriteBack            bool
	CreateCommunityNodes bool

	// Params routes per-algorithm parameters by algorithm name.
	Params map[string]algorithms.Params
}

// Pipeline wires the store, builder, registries and writer together.
type Pipeline struct {
	store      store.Store
	builder    *graph.Builder
	centrality *algorithms.Registry
	community  *algorithms.Registry
	writer     algorithms.ResultWriter
	logger     logging.Logger
	metrics    *metrics.Registry
	opts       Options

	publisher Publisher
	archiver  Archiver
}

// New creates a pipeline. Writer may be nil when opts.WriteBack is false.
// A nil logger disables logging.
func New(s store.Store, centrality, community *algorithms.Registry, w algorithms.ResultWriter, logger logging.Logger, m *metrics.Registry, opts Options) *Pipeline {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Pipeline{
		store:      s,
		builder:    graph.NewBuilder(logger),
		centrality: centrality,
		community:  community,
		writer:     w,
		logger:     logger,
		metrics:    m,
		opts:       opts,
	}
}

// WithOptions returns a shallow copy of the pipeline running with different
// options. Store, registries, writer and sinks are shared; per-request
// overrides on the API use this.
func (p *Pipeline) WithOptions(opts Options) *Pipeline {
	clone := *p
	clone.opts = opts
	return &clone
}

// Options returns the pipeline's configured options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// SetPublisher attaches an optional run-completion publisher.
func (p *Pipeline) SetPublisher(pub Publisher) { p.publisher = pub }

// SetArchiver attaches an optional report archiver.
func (p *Pipeline) SetArchiver(a Archiver) { p.archiver = a }

// BuildGraph fetches records and constructs the analysis graph.
func (p *Pipeline) BuildGraph(ctx context.Context) (*graph.Graph, error) {
	start := time.Now()
	nodes, edges, err := p.store.FetchGraphData(ctx, p.opts.EntityType, p.opts.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching graph data: %w", err)
	}

	g := p.builder.Build(nodes, edges, p.opts.Build)
	if p.metrics != nil {
		p.metrics.RecordGraphBuild(time.Since(start), g.NodeCount(), g.EdgeCount())
	}
	return g, nil
}

// RunCentrality executes every enabled centrality algorithm in one pass.
func (p *Pipeline) RunCentrality(ctx context.Context) (*RunReport, error) {
	return p.run(ctx, KindCentrality, p.centrality)
}

// RunCommunity executes every enabled community algorithm in one pass and
// attaches a community analysis per partition.
func (p *Pipeline) RunCommunity(ctx context.Context) (*RunReport, error) {
	return p.run(ctx, KindCommunity, p.community)
}

func (p *Pipeline) run(ctx context.Context, kind Kind, registry *algorithms.Registry) (*RunReport, error) {
	runID := uuid.NewString()
	start := time.Now()

	p.logger.Info("pipeline run starting",
		logging.RunID(runID),
		logging.String("kind", string(kind)),
	)

	g, err := p.BuildGraph(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := registry.RunAll(ctx, g, p.runOptions(runID, kind), p.opts.Params)

	report := &RunReport{
		RunID:      runID,
		Kind:       kind,
		StartedAt:  start,
		Duration:   time.Since(start),
		GraphNodes: g.NodeCount(),
		GraphEdges: g.EdgeCount(),
		Outcomes:   outcomes,
	}

	if kind == KindCommunity {
		report.Analyses = make(map[string]algorithms.CommunityAnalysis, len(outcomes))
		for name, outcome := range outcomes {
			if outcome.Metadata.Failed() || outcome.Metadata.EmptyGraph {
				continue
			}
			report.Analyses[name] = algorithms.AnalyzeCommunities(g, outcome.Result.Partition())
		}
	}

	p.finish(ctx, report)
	return report, nil
}

// RunAlgorithm executes a single algorithm by name, looking in both
// registries. An unknown name fails with algorithms.ErrAlgorithmNotFound.
func (p *Pipeline) RunAlgorithm(ctx context.Context, name string) (*RunReport, error) {
	runID := uuid.NewString()
	start := time.Now()

	g, err := p.BuildGraph(ctx)
	if err != nil {
		return nil, err
	}

	kind := KindCentrality
	registry := p.centrality
	outcome, err := registry.Run(ctx, name, g, p.runOptions(runID, kind))
	if err != nil {
		kind = KindCommunity
		registry = p.community
		outcome, err = registry.Run(ctx, name, g, p.runOptions(runID, kind))
	}
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		RunID:      runID,
		Kind:       kind,
		StartedAt:  start,
		Duration:   time.Since(start),
		GraphNodes: g.NodeCount(),
		GraphEdges: g.EdgeCount(),
		Outcomes:   map[string]algorithms.RunOutcome{name: outcome},
	}
	if kind == KindCommunity && !outcome.Metadata.Failed() && !outcome.Metadata.EmptyGraph {
		report.Analyses = map[string]algorithms.CommunityAnalysis{
			name: algorithms.AnalyzeCommunities(g, outcome.Result.Partition()),
		}
	}

	p.finish(ctx, report)
	return report, nil
}

// Names lists every algorithm available to this pipeline.
func (p *Pipeline) Names() (centrality, community []string) {
	return p.centrality.Names(), p.community.Names()
}

// Statistics merges last-run statistics from both registries.
func (p *Pipeline) Statistics() map[string]algorithms.Statistics {
	stats := p.centrality.Statistics()
	for name, s := range p.community.Statistics() {
		stats[name] = s
	}
	return stats
}

func (p *Pipeline) runOptions(runID string, kind Kind) algorithms.RunOptions {
	return algorithms.RunOptions{
		WriteBack:            p.opts.WriteBack && p.writer != nil,
		Writer:               p.writer,
		CreateCommunityNodes: kind == KindCommunity && p.opts.CreateCommunityNodes,
		RunID:                runID,
	}
}

// finish publishes and archives the report. Both are best-effort: a dead
// event bus or archive bucket must not fail an otherwise good run.
func (p *Pipeline) finish(ctx context.Context, report *RunReport) {
	failures := 0
	for _, outcome := range report.Outcomes {
		if outcome.Metadata.Failed() {
			failures++
		}
	}
	p.logger.Info("pipeline run finished",
		logging.RunID(report.RunID),
		logging.String("kind", string(report.Kind)),
		logging.Int("algorithms", len(report.Outcomes)),
		logging.Int("failures", failures),
		logging.Duration("duration", report.Duration),
	)

	if p.publisher != nil {
		if err := p.publisher.PublishRunCompleted(report); err != nil {
			p.logger.Warn("run event publish failed", logging.Error(err))
		}
	}
	if p.archiver != nil {
		if err := p.archiver.ArchiveReport(ctx, report); err != nil {
			p.logger.Warn("report archive failed", logging.Error(err))
		}
	}
}
