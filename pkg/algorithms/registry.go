package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/metrics"
)

// ErrAlgorithmNotFound is returned when a requested algorithm is not in the
// registry's enabled set. Unlike runtime failures this propagates to the
// caller: asking for an unregistered algorithm is a programming error.
var ErrAlgorithmNotFound = errors.New("algorithm not found")

// Registry is a named collection of runners built once from configuration
// toggles.
type Registry struct {
	runners map[string]*Runner
	logger  logging.Logger
}

// CentralityToggles selects which centrality algorithms a registry enables.
type CentralityToggles struct {
	PageRank    bool
	Betweenness bool
	Closeness   bool
	Eigenvector bool
}

// CommunityToggles selects which community-detection algorithms a registry
// enables. Greedy modularity is always registered as the fallback, matching
// the behavior the service has always had.
type CommunityToggles struct {
	Louvain          bool
	LabelPropagation bool
	Leiden           bool
}

func newRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{
		runners: make(map[string]*Runner),
		logger:  logger,
	}
}

func (r *Registry) register(algo Algorithm, registry *metrics.Registry) {
	r.runners[algo.Name()] = NewRunner(algo, r.logger, registry)
}

// NewCentralityRegistry builds the centrality registry from config toggles.
func NewCentralityRegistry(toggles CentralityToggles, logger logging.Logger, registry *metrics.Registry) *Registry {
	r := newRegistry(logger)
	if toggles.PageRank {
		r.register(pageRankAlgorithm{}, registry)
	}
	if toggles.Betweenness {
		r.register(betweennessAlgorithm{}, registry)
	}
	if toggles.Closeness {
		r.register(closenessAlgorithm{}, registry)
	}
	if toggles.Eigenvector {
		r.register(eigenvectorAlgorithm{}, registry)
	}
	return r
}

// NewCommunityRegistry builds the community-detection registry from config
// toggles.
func NewCommunityRegistry(toggles CommunityToggles, logger logging.Logger, registry *metrics.Registry) *Registry {
	r := newRegistry(logger)
	if toggles.Louvain {
		r.register(louvainAlgorithm{}, registry)
	}
	if toggles.LabelPropagation {
		r.register(labelPropagationAlgorithm{}, registry)
	}
	if toggles.Leiden {
		r.register(leidenAlgorithm{}, registry)
	}
	r.register(greedyModularityAlgorithm{}, registry)
	return r
}

// RunAll executes every enabled algorithm against the same graph. Runs are
// independent: one algorithm's failure is recorded in its own metadata and
// the rest still run. perAlgo maps algorithm name to its parameters.
func (r *Registry) RunAll(ctx context.Context, g *graph.Graph, opts RunOptions, perAlgo map[string]Params) map[string]RunOutcome {
	outcomes := make(map[string]RunOutcome, len(r.runners))
	for name, runner := range r.runners {
		runOpts := opts
		runOpts.Params = perAlgo[name]
		outcomes[name] = runner.Run(ctx, g, runOpts)
	}
	return outcomes
}

// Run executes one algorithm by name.
func (r *Registry) Run(ctx context.Context, name string, g *graph.Graph, opts RunOptions) (RunOutcome, error) {
	runner, ok := r.runners[name]
	if !ok {
		return RunOutcome{}, fmt.Errorf("%w: %s", ErrAlgorithmNotFound, name)
	}
	return runner.Run(ctx, g, opts), nil
}

// Names returns the registered algorithm names, sorted for stable output.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Statistics returns each runner's last-run statistics.
func (r *Registry) Statistics() map[string]Statistics {
	stats := make(map[string]Statistics, len(r.runners))
	for name, runner := range r.runners {
		stats[name] = runner.Statistics()
	}
	return stats
}
