package algorithms

import (
	"testing"
)

func TestAnalyzeCommunities_SizeStatistics(t *testing.T) {
	g := buildTestGraph(t, false, []string{"a", "b", "c"}, [][2]string{
		{"a", "b"}, {"b", "c"},
	})
	partition := Partition{"a": 0, "b": 0, "c": 1}

	analysis := AnalyzeCommunities(g, partition)

	if analysis.EmptyPartition {
		t.Fatal("Expected non-empty analysis")
	}
	if analysis.NumCommunities != 2 {
		t.Errorf("Expected 2 communities, got %d", analysis.NumCommunities)
	}
	if analysis.Sizes[0] != 2 || analysis.Sizes[1] != 1 {
		t.Errorf("Expected sizes {0:2 1:1}, got %v", analysis.Sizes)
	}
	if analysis.LargestSize != 2 {
		t.Errorf("Expected largest 2, got %d", analysis.LargestSize)
	}
	if analysis.SmallestSize != 1 {
		t.Errorf("Expected smallest 1, got %d", analysis.SmallestSize)
	}
	if analysis.AverageSize != 1.5 {
		t.Errorf("Expected average 1.5, got %f", analysis.AverageSize)
	}
	if analysis.Modularity == nil {
		t.Error("Expected modularity to be computed")
	}
}

func TestAnalyzeCommunities_EmptyPartition(t *testing.T) {
	g := buildTestGraph(t, false, nil, nil)

	analysis := AnalyzeCommunities(g, Partition{})

	if !analysis.EmptyPartition {
		t.Fatal("Expected empty-partition marker")
	}
	if analysis.NumCommunities != 0 || analysis.Modularity != nil {
		t.Errorf("Expected zeroed analysis, got %+v", analysis)
	}
}

func TestAnalyzeCommunities_ModularityNilWhenUncovered(t *testing.T) {
	g := buildTestGraph(t, false, []string{"a", "b", "c"}, [][2]string{
		{"a", "b"},
	})
	// c is missing from the partition, so modularity cannot be computed
	partition := Partition{"a": 0, "b": 0}

	analysis := AnalyzeCommunities(g, partition)

	if analysis.Modularity != nil {
		t.Error("Expected nil modularity for an uncovered partition")
	}
	if analysis.NumCommunities != 1 {
		t.Errorf("Expected size stats despite modularity failure, got %+v", analysis)
	}
}

func TestAnalyzeCommunities_TwoCliquesHavePositiveModularity(t *testing.T) {
	g := twoCliques(t)
	partition := Partition{"a": 0, "b": 0, "c": 0, "x": 1, "y": 1, "z": 1}

	analysis := AnalyzeCommunities(g, partition)

	if analysis.Modularity == nil {
		t.Fatal("Expected modularity to be computed")
	}
	if *analysis.Modularity <= 0 {
		t.Errorf("Expected positive modularity, got %f", *analysis.Modularity)
	}
}
