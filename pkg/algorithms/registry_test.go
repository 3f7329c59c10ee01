package algorithms

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
)

func allCentralityToggles() CentralityToggles {
	return CentralityToggles{PageRank: true, Betweenness: true, Closeness: true, Eigenvector: true}
}

func TestCentralityRegistry_Names(t *testing.T) {
	r := NewCentralityRegistry(allCentralityToggles(), nil, nil)

	want := []string{
		"betweenness_centrality",
		"closeness_centrality",
		"eigenvector_centrality",
		"pagerank",
	}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestCentralityRegistry_Toggles(t *testing.T) {
	r := NewCentralityRegistry(CentralityToggles{PageRank: true}, nil, nil)

	if got := r.Names(); !reflect.DeepEqual(got, []string{"pagerank"}) {
		t.Errorf("Expected only pagerank, got %v", got)
	}
}

func TestCommunityRegistry_GreedyModularityAlwaysRegistered(t *testing.T) {
	r := NewCommunityRegistry(CommunityToggles{}, nil, nil)

	if got := r.Names(); !reflect.DeepEqual(got, []string{"greedy_modularity"}) {
		t.Errorf("Expected greedy_modularity fallback, got %v", got)
	}
}

func TestRegistry_RunNotFound(t *testing.T) {
	r := NewCentralityRegistry(CentralityToggles{PageRank: true}, nil, nil)
	g := buildTestGraph(t, false, []string{"a"}, nil)

	_, err := r.Run(context.Background(), "betweenness_centrality", g, RunOptions{})
	if !errors.Is(err, ErrAlgorithmNotFound) {
		t.Fatalf("Expected ErrAlgorithmNotFound, got %v", err)
	}
}

func TestRegistry_RunAll_FailureIsolation(t *testing.T) {
	r := newRegistry(nil)
	r.register(stubAlgorithm{name: "broken", err: errors.New("boom")}, nil)
	r.register(stubAlgorithm{name: "healthy", result: Result{"a": 1}}, nil)

	g := buildTestGraph(t, false, []string{"a"}, nil)
	outcomes := r.RunAll(context.Background(), g, RunOptions{}, nil)

	if len(outcomes) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes["broken"].Metadata.Error == "" {
		t.Error("Expected broken algorithm to record its error")
	}
	if outcomes["healthy"].Metadata.Failed() {
		t.Error("Sibling failure leaked into healthy algorithm")
	}
	if outcomes["healthy"].Result["a"] != 1 {
		t.Error("Healthy algorithm lost its result")
	}
}

func TestRegistry_RunAll_PerAlgorithmParams(t *testing.T) {
	var seen Params
	r := newRegistry(nil)
	r.register(paramCapture{capture: &seen}, nil)

	g := buildTestGraph(t, false, []string{"a"}, nil)
	r.RunAll(context.Background(), g, RunOptions{}, map[string]Params{
		"capture": {"alpha": 0.5},
	})

	if seen.Float("alpha", 0) != 0.5 {
		t.Errorf("Per-algorithm params not routed, got %v", seen)
	}
}

type paramCapture struct {
	capture *Params
}

func (paramCapture) Name() string { return "capture" }

func (p paramCapture) Compute(g *graph.Graph, params Params) (Result, error) {
	*p.capture = params
	return Result{}, nil
}

func TestRegistry_Statistics(t *testing.T) {
	r := newRegistry(nil)
	r.register(stubAlgorithm{name: "stub", result: Result{"a": 1}}, nil)

	g := buildTestGraph(t, false, []string{"a"}, nil)
	r.RunAll(context.Background(), g, RunOptions{}, nil)

	stats := r.Statistics()
	if stats["stub"].LastCount != 1 {
		t.Errorf("Expected statistics recorded, got %+v", stats["stub"])
	}
}
