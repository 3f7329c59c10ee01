package graph

// Node is a single vertex in an analysis graph. Nodes are identified by the
// UID they carry in the backing store, so results can be written back without
// a translation table.
type Node struct {
	ID    string
	Name  string
	Type  string
	Attrs map[string]any
}

// Edge connects two nodes. For undirected graphs Source/Target ordering is
// preserved as submitted but the edge is stored under a canonical key, so
// (a,b) and (b,a) are the same edge.
type Edge struct {
	Source string
	Target string
	Type   string
	Attrs  map[string]any
}

// Graph is the in-memory model algorithms run against. A Graph is owned by
// the pipeline invocation that built it and is never mutated once handed to
// the algorithm registries.
type Graph struct {
	directed bool
	nodes    map[string]*Node
	edges    map[edgeKey]*Edge
	out      map[string]map[string]*Edge // source -> target
	in       map[string]map[string]*Edge // target -> source, directed only
}

type edgeKey struct {
	source string
	target string
}

// New creates an empty graph.
func New(directed bool) *Graph {
	return &Graph{
		directed: directed,
		nodes:    make(map[string]*Node),
		edges:    make(map[edgeKey]*Edge),
		out:      make(map[string]map[string]*Edge),
		in:       make(map[string]map[string]*Edge),
	}
}

// Directed reports whether the graph was built directed.
func (g *Graph) Directed() bool {
	return g.directed
}

// AddNode inserts a node. Re-adding an existing ID overwrites the node's
// name, type and attributes.
func (g *Graph) AddNode(n *Node) error {
	if n == nil || n.ID == "" {
		return ErrInvalidNode
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	g.nodes[n.ID] = n
	return nil
}

// key returns the storage key for an edge between source and target. For
// undirected graphs the lexicographically smaller endpoint comes first.
func (g *Graph) key(source, target string) edgeKey {
	if !g.directed && source > target {
		return edgeKey{source: target, target: source}
	}
	return edgeKey{source: source, target: target}
}

// AddEdge inserts an edge. Both endpoints must already exist as nodes.
// A duplicate (source, target) submission overwrites the existing edge's
// type and attributes instead of creating a parallel edge.
func (g *Graph) AddEdge(e *Edge) error {
	if e == nil || e.Source == "" || e.Target == "" {
		return ErrInvalidEdge
	}
	if _, ok := g.nodes[e.Source]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return ErrUnknownEndpoint
	}
	if e.Attrs == nil {
		e.Attrs = make(map[string]any)
	}

	k := g.key(e.Source, e.Target)
	if existing, ok := g.edges[k]; ok {
		existing.Type = e.Type
		existing.Attrs = e.Attrs
		return nil
	}

	g.edges[k] = e
	g.link(g.out, k.source, k.target, e)
	if g.directed {
		g.link(g.in, k.target, k.source, e)
	} else {
		g.link(g.out, k.target, k.source, e)
	}
	return nil
}

func (g *Graph) link(adj map[string]map[string]*Edge, from, to string, e *Edge) {
	m, ok := adj[from]
	if !ok {
		m = make(map[string]*Edge)
		adj[from] = m
	}
	m[to] = e
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in unspecified order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// NodeIDs returns the IDs of all nodes in unspecified order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Edges returns all edges in unspecified order.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Degree returns the degree of a node. For directed graphs this is the sum
// of in-degree and out-degree. Self-loops count twice on undirected graphs,
// matching the usual convention.
func (g *Graph) Degree(id string) int {
	if g.directed {
		return len(g.out[id]) + len(g.in[id])
	}
	degree := 0
	for to := range g.out[id] {
		degree++
		if to == id {
			degree++
		}
	}
	return degree
}

// Neighbors returns the IDs of nodes adjacent to id. For directed graphs
// both in- and out-neighbors are included, which is what the weak component
// and community code wants.
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]bool, len(g.out[id]))
	for to := range g.out[id] {
		seen[to] = true
	}
	if g.directed {
		for from := range g.in[id] {
			seen[from] = true
		}
	}
	neighbors := make([]string, 0, len(seen))
	for n := range seen {
		neighbors = append(neighbors, n)
	}
	return neighbors
}

// OutNeighbors returns the targets of edges leaving id. On undirected graphs
// this is the same as Neighbors.
func (g *Graph) OutNeighbors(id string) []string {
	neighbors := make([]string, 0, len(g.out[id]))
	for to := range g.out[id] {
		neighbors = append(neighbors, to)
	}
	return neighbors
}

// InNeighbors returns the sources of edges entering id. On undirected graphs
// this is the same as Neighbors.
func (g *Graph) InNeighbors(id string) []string {
	if !g.directed {
		return g.OutNeighbors(id)
	}
	neighbors := make([]string, 0, len(g.in[id]))
	for from := range g.in[id] {
		neighbors = append(neighbors, from)
	}
	return neighbors
}

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id string) int {
	return len(g.out[id])
}

// HasEdge reports whether an edge exists between source and target,
// respecting direction on directed graphs.
func (g *Graph) HasEdge(source, target string) bool {
	_, ok := g.edges[g.key(source, target)]
	return ok
}

// Density returns the graph density: the fraction of possible edges that
// exist. Zero for graphs with fewer than two nodes.
func (g *Graph) Density() float64 {
	n := float64(len(g.nodes))
	if n < 2 {
		return 0
	}
	m := float64(len(g.edges))
	if g.directed {
		return m / (n * (n - 1))
	}
	return 2 * m / (n * (n - 1))
}

// IsConnected reports whether the graph is connected. Directed graphs use
// weak connectivity. The empty graph is not connected.
func (g *Graph) IsConnected() bool {
	if len(g.nodes) == 0 {
		return false
	}
	for _, component := range g.Components() {
		return len(component) == len(g.nodes)
	}
	return false
}

// induced returns a new graph containing only the given nodes and the edges
// whose endpoints both survive. Node and edge values are shared with the
// source graph, not copied.
func (g *Graph) induced(keep map[string]bool) *Graph {
	sub := New(g.directed)
	for id := range keep {
		if n, ok := g.nodes[id]; ok {
			sub.nodes[id] = n
		}
	}
	for k, e := range g.edges {
		if !keep[k.source] || !keep[k.target] {
			continue
		}
		sub.edges[k] = e
		sub.link(sub.out, k.source, k.target, e)
		if g.directed {
			sub.link(sub.in, k.target, k.source, e)
		} else {
			sub.link(sub.out, k.target, k.source, e)
		}
	}
	return sub
}
