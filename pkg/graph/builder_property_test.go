package graph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genNodeIDs produces small node ID slices drawn from a fixed alphabet so
// edge records have a realistic chance of referencing existing nodes.
func genNodeIDs() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf("a", "b", "c", "d", "e", "f"))
}

func genEdgePairs() gopter.Gen {
	return gen.SliceOf(gopter.CombineGens(
		gen.OneConstOf("a", "b", "c", "d", "e", "f", "ghost"),
		gen.OneConstOf("a", "b", "c", "d", "e", "f", "ghost"),
	).Map(func(vals []interface{}) [2]string {
		return [2]string{vals[0].(string), vals[1].(string)}
	}))
}

// TestBuilderInvariants verifies construction invariants that must hold for
// any record set: no dangling edges, self-loop exclusion by default, and the
// min-degree threshold on every surviving node.
func TestBuilderInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	buildFrom := func(ids []string, pairs [][2]string, opts BuildOptions) *Graph {
		nodes := make([]NodeRecord, 0, len(ids))
		for _, id := range ids {
			nodes = append(nodes, NodeRecord{UID: id})
		}
		edges := make([]EdgeRecord, 0, len(pairs))
		for _, pair := range pairs {
			edges = append(edges, EdgeRecord{Source: pair[0], Target: pair[1]})
		}
		return NewBuilder(nil).Build(nodes, edges, opts)
	}

	properties.Property("every edge endpoint is a graph node", prop.ForAll(
		func(ids []string, pairs [][2]string) bool {
			g := buildFrom(ids, pairs, BuildOptions{})
			for _, e := range g.Edges() {
				if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
					return false
				}
			}
			return true
		},
		genNodeIDs(),
		genEdgePairs(),
	))

	properties.Property("no self-loops unless requested", prop.ForAll(
		func(ids []string, pairs [][2]string) bool {
			g := buildFrom(ids, pairs, BuildOptions{})
			for _, e := range g.Edges() {
				if e.Source == e.Target {
					return false
				}
			}
			return true
		},
		genNodeIDs(),
		genEdgePairs(),
	))

	properties.Property("duplicate records never create parallel edges", prop.ForAll(
		func(ids []string, pairs [][2]string) bool {
			doubled := append(append([][2]string{}, pairs...), pairs...)
			g := buildFrom(ids, doubled, BuildOptions{})
			single := buildFrom(ids, pairs, BuildOptions{})
			return g.EdgeCount() == single.EdgeCount()
		},
		genNodeIDs(),
		genEdgePairs(),
	))

	properties.Property("min-degree prune keeps only qualifying nodes", prop.ForAll(
		func(ids []string, pairs [][2]string, minDegree int) bool {
			full := buildFrom(ids, pairs, BuildOptions{})
			pruned := buildFrom(ids, pairs, BuildOptions{MinDegree: minDegree})
			for _, id := range pruned.NodeIDs() {
				// The threshold applies against the full graph, in one pass
				if full.Degree(id) < minDegree {
					return false
				}
			}
			return true
		},
		genNodeIDs(),
		genEdgePairs(),
		gen.IntRange(1, 4),
	))

	properties.TestingRun(t)
}
