package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
)

// twoCliques builds two triangles joined by a single bridge edge.
func twoCliques(t *testing.T) *graph.Graph {
	t.Helper()
	return buildTestGraph(t, false,
		[]string{"a", "b", "c", "x", "y", "z"},
		[][2]string{
			{"a", "b"}, {"b", "c"}, {"a", "c"},
			{"x", "y"}, {"y", "z"}, {"x", "z"},
			{"c", "x"},
		})
}

func assertSameCommunity(t *testing.T, partition Partition, ids ...string) {
	t.Helper()
	first := partition[ids[0]]
	for _, id := range ids[1:] {
		if partition[id] != first {
			t.Errorf("Expected %v in one community, got %v", ids, partition)
			return
		}
	}
}

func TestDensify_LabelsDenseFromZero(t *testing.T) {
	partition := densify(map[string]int{"a": 42, "b": 42, "c": 7, "d": 100})

	seen := make(map[int]bool)
	for _, label := range partition {
		seen[label] = true
	}
	if len(seen) != 3 {
		t.Fatalf("Expected 3 distinct labels, got %v", partition)
	}
	for want := 0; want < 3; want++ {
		if !seen[want] {
			t.Errorf("Expected dense label %d, got %v", want, partition)
		}
	}
	if partition["a"] != partition["b"] {
		t.Errorf("Expected a and b to share a label, got %v", partition)
	}
}

func TestLabelPropagation_TwoCliques(t *testing.T) {
	g := twoCliques(t)

	result, err := labelPropagationAlgorithm{}.Compute(g, nil)
	if err != nil {
		t.Fatalf("Label propagation failed: %v", err)
	}

	partition := result.Partition()
	assertSameCommunity(t, partition, "a", "b", "c")
	assertSameCommunity(t, partition, "x", "y", "z")
}

func TestLouvain_TwoCliques(t *testing.T) {
	g := twoCliques(t)

	result, err := louvainAlgorithm{}.Compute(g, nil)
	if err != nil {
		t.Fatalf("Louvain failed: %v", err)
	}

	partition := result.Partition()
	assertSameCommunity(t, partition, "a", "b", "c")
	assertSameCommunity(t, partition, "x", "y", "z")
	if partition["a"] == partition["x"] {
		t.Errorf("Expected the cliques in separate communities, got %v", partition)
	}
}

func TestLouvain_EdgelessGraphIsSingletons(t *testing.T) {
	g := buildTestGraph(t, false, []string{"a", "b", "c"}, nil)

	result, err := louvainAlgorithm{}.Compute(g, nil)
	if err != nil {
		t.Fatalf("Louvain failed: %v", err)
	}

	seen := make(map[float64]bool)
	for _, label := range result {
		seen[label] = true
	}
	if len(seen) != 3 {
		t.Errorf("Expected 3 singleton communities, got %v", result)
	}
}

func TestLeiden_DelegatesToLouvain(t *testing.T) {
	g := twoCliques(t)

	result, err := leidenAlgorithm{}.Compute(g, nil)
	if err != nil {
		t.Fatalf("Leiden failed: %v", err)
	}

	partition := result.Partition()
	assertSameCommunity(t, partition, "a", "b", "c")
	assertSameCommunity(t, partition, "x", "y", "z")
}

func TestGreedyModularity_TwoCliques(t *testing.T) {
	g := twoCliques(t)

	result, err := greedyModularityAlgorithm{}.Compute(g, nil)
	if err != nil {
		t.Fatalf("Greedy modularity failed: %v", err)
	}

	partition := result.Partition()
	assertSameCommunity(t, partition, "a", "b", "c")
	assertSameCommunity(t, partition, "x", "y", "z")
	if partition["a"] == partition["x"] {
		t.Errorf("Expected the cliques in separate communities, got %v", partition)
	}
}

func TestGreedyModularity_CutoffStopsMerging(t *testing.T) {
	g := twoCliques(t)

	result, err := greedyModularityAlgorithm{}.Compute(g, Params{"cutoff": 6})
	if err != nil {
		t.Fatalf("Greedy modularity failed: %v", err)
	}

	seen := make(map[float64]bool)
	for _, label := range result {
		seen[label] = true
	}
	if len(seen) != 6 {
		t.Errorf("Expected cutoff to keep 6 communities, got %d", len(seen))
	}
}
