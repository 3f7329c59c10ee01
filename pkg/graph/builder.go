package graph

import (
	"time"

	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
)

// NodeRecord is a raw node row as returned by a store. UID is the primary
// identifier; NodeID is the alternate identifier some stores populate
// instead. Attrs carries any extra fields the store returned.
type NodeRecord struct {
	UID    string
	NodeID string
	Name   string
	Type   string
	Attrs  map[string]any
}

// EdgeRecord is a raw relationship row as returned by a store.
type EdgeRecord struct {
	Source string
	Target string
	Type   string
	Attrs  map[string]any
}

// DefaultRelationType is assigned to edges whose record carries no
// relationship type.
const DefaultRelationType = "related_to"

// BuildOptions controls graph construction.
type BuildOptions struct {
	Directed         bool
	IncludeSelfLoops bool
	// MinDegree removes nodes below the threshold in a single pass over the
	// fully built graph. Nodes whose degree only drops below the threshold
	// because a neighbor was removed are not re-evaluated.
	MinDegree int
}

// Builder converts raw store records into Graphs.
type Builder struct {
	logger logging.Logger

	lastNodeCount int
	lastBuildTime time.Duration
}

// NewBuilder creates a builder. A nil logger disables logging.
func NewBuilder(logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{logger: logger}
}

// Build constructs a graph from raw records. Records without an identifier,
// edges missing an endpoint, and edges referencing unknown nodes are dropped
// silently: they are expected filtering outcomes, not faults.
func (b *Builder) Build(nodes []NodeRecord, edges []EdgeRecord, opts BuildOptions) *Graph {
	start := time.Now()
	g := New(opts.Directed)

	b.logger.Info("building graph",
		logging.Field{Key: "node_records", Value: len(nodes)},
		logging.Field{Key: "edge_records", Value: len(edges)},
	)

	for _, record := range nodes {
		id := record.UID
		if id == "" {
			id = record.NodeID
		}
		if id == "" {
			continue
		}
		attrs := record.Attrs
		if attrs == nil {
			attrs = make(map[string]any)
		}
		g.AddNode(&Node{
			ID:    id,
			Name:  record.Name,
			Type:  record.Type,
			Attrs: attrs,
		})
	}

	for _, record := range edges {
		if record.Source == "" || record.Target == "" {
			continue
		}
		if !opts.IncludeSelfLoops && record.Source == record.Target {
			continue
		}
		if !g.HasNode(record.Source) || !g.HasNode(record.Target) {
			continue
		}
		edgeType := record.Type
		if edgeType == "" {
			edgeType = DefaultRelationType
		}
		g.AddEdge(&Edge{
			Source: record.Source,
			Target: record.Target,
			Type:   edgeType,
			Attrs:  record.Attrs,
		})
	}

	if opts.MinDegree > 0 {
		keep := make(map[string]bool, g.NodeCount())
		removed := 0
		for id := range g.nodes {
			if g.Degree(id) >= opts.MinDegree {
				keep[id] = true
			} else {
				removed++
			}
		}
		if removed > 0 {
			g = g.induced(keep)
			b.logger.Info("pruned low-degree nodes",
				logging.Field{Key: "removed", Value: removed},
				logging.Field{Key: "min_degree", Value: opts.MinDegree},
			)
		}
	}

	b.lastNodeCount = g.NodeCount()
	b.lastBuildTime = time.Since(start)

	b.logger.Info("graph built",
		logging.Field{Key: "nodes", Value: g.NodeCount()},
		logging.Field{Key: "edges", Value: g.EdgeCount()},
		logging.Field{Key: "duration", Value: b.lastBuildTime.String()},
	)

	return g
}

// LastBuild returns the node count and duration of the most recent Build.
func (b *Builder) LastBuild() (nodes int, elapsed time.Duration) {
	return b.lastNodeCount, b.lastBuildTime
}

// matchNode reports whether a node satisfies an exact-match attribute filter.
// The keys "name" and "type" address the named fields; anything else looks up
// the attribute bag.
func matchNode(n *Node, filter map[string]any) bool {
	for k, want := range filter {
		var got any
		switch k {
		case "name":
			got = n.Name
		case "type":
			got = n.Type
		default:
			got = n.Attrs[k]
		}
		if got != want {
			return false
		}
	}
	return true
}

// matchEdge reports whether an edge satisfies an exact-match attribute
// filter. The key "relationship_type" addresses the edge type field.
func matchEdge(e *Edge, filter map[string]any) bool {
	for k, want := range filter {
		var got any
		if k == "relationship_type" {
			got = e.Type
		} else {
			got = e.Attrs[k]
		}
		if got != want {
			return false
		}
	}
	return true
}

// Subgraph selects nodes matching nodeFilter (all nodes when nil), truncates
// to maxNodes (no ordering guarantee on which survive), then drops edges
// failing edgeFilter.
func (b *Builder) Subgraph(g *Graph, nodeFilter, edgeFilter map[string]any, maxNodes int) *Graph {
	keep := make(map[string]bool)
	for id, n := range g.nodes {
		if len(nodeFilter) == 0 || matchNode(n, nodeFilter) {
			keep[id] = true
		}
	}

	if maxNodes > 0 && len(keep) > maxNodes {
		truncated := make(map[string]bool, maxNodes)
		for id := range keep {
			truncated[id] = true
			if len(truncated) == maxNodes {
				break
			}
		}
		keep = truncated
	}

	sub := g.induced(keep)

	if len(edgeFilter) > 0 {
		filtered := New(sub.directed)
		for id := range keep {
			if n, ok := sub.nodes[id]; ok {
				filtered.nodes[id] = n
			}
		}
		for _, e := range sub.Edges() {
			if matchEdge(e, edgeFilter) {
				filtered.AddEdge(e)
			}
		}
		sub = filtered
	}

	b.logger.Info("created subgraph",
		logging.Field{Key: "nodes", Value: sub.NodeCount()},
		logging.Field{Key: "edges", Value: sub.EdgeCount()},
	)

	return sub
}

// LargestComponent returns the largest connected component as a new graph.
// Ties between equal-size components are broken by enumeration order, which
// is not deterministic.
func (b *Builder) LargestComponent(g *Graph) *Graph {
	var largest []string
	for _, component := range g.Components() {
		if len(component) > len(largest) {
			largest = component
		}
	}

	keep := make(map[string]bool, len(largest))
	for _, id := range largest {
		keep[id] = true
	}
	sub := g.induced(keep)

	b.logger.Info("extracted largest component",
		logging.Field{Key: "nodes", Value: sub.NodeCount()},
		logging.Field{Key: "edges", Value: sub.EdgeCount()},
	)

	return sub
}
