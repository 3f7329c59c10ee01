package graph

import (
	"errors"
	"fmt"
)

// ErrNotAPartition is returned when a community assignment does not cover
// every node in the graph.
var ErrNotAPartition = errors.New("assignment does not cover every graph node")

// Modularity computes the modularity score of a community partition: the
// density of intra-community edges versus the random-graph expectation.
// It fails on degenerate input: a graph with no edges, or a partition that
// does not cover every node.
func Modularity(g *Graph, partition map[string]int) (float64, error) {
	m := float64(g.EdgeCount())
	if m == 0 {
		return 0, fmt.Errorf("modularity undefined: graph has no edges")
	}
	for id := range g.nodes {
		if _, ok := partition[id]; !ok {
			return 0, fmt.Errorf("%w: node %s unassigned", ErrNotAPartition, id)
		}
	}

	intra := make(map[int]float64)   // edges inside each community
	degrees := make(map[int]float64) // total degree per community

	for k := range g.edges {
		if partition[k.source] == partition[k.target] {
			intra[partition[k.source]]++
		}
	}
	for id := range g.nodes {
		degrees[partition[id]] += float64(g.Degree(id))
	}

	q := 0.0
	for _, inside := range intra {
		q += inside / m
	}
	for _, degree := range degrees {
		share := degree / (2 * m)
		q -= share * share
	}
	return q, nil
}
