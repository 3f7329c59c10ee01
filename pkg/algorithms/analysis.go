package algorithms

import (
	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
)

// CommunityAnalysis summarizes the structure of a partition.
type CommunityAnalysis struct {
	// EmptyPartition marks an analysis of an empty partition; all other
	// fields are zero in that case.
	EmptyPartition bool `json:"empty_partition,omitempty"`

	NumCommunities int         `json:"num_communities"`
	Sizes          map[int]int `json:"community_sizes"`
	LargestSize    int         `json:"largest_community_size"`
	SmallestSize   int         `json:"smallest_community_size"`
	AverageSize    float64     `json:"average_community_size"`

	// Modularity is nil when the computation failed on a degenerate
	// partition; the rest of the analysis is still valid.
	Modularity *float64 `json:"modularity"`
}

// AnalyzeCommunities computes size statistics and modularity for a
// partition. An empty partition yields an empty-partition analysis, not an
// error; a modularity failure yields a nil modularity only.
func AnalyzeCommunities(g *graph.Graph, partition Partition) CommunityAnalysis {
	if len(partition) == 0 {
		return CommunityAnalysis{EmptyPartition: true}
	}

	sizes := make(map[int]int)
	for _, community := range partition {
		sizes[community]++
	}

	largest, smallest := 0, len(partition)+1
	total := 0
	for _, size := range sizes {
		if size > largest {
			largest = size
		}
		if size < smallest {
			smallest = size
		}
		total += size
	}

	analysis := CommunityAnalysis{
		NumCommunities: len(sizes),
		Sizes:          sizes,
		LargestSize:    largest,
		SmallestSize:   smallest,
		AverageSize:    float64(total) / float64(len(sizes)),
	}

	if q, err := graph.Modularity(g, map[string]int(partition)); err == nil {
		analysis.Modularity = &q
	}

	return analysis
}
