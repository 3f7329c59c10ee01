package algorithms

import (
	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
)

// densify renumbers arbitrary community labels to dense integers starting
// at 0. The numbering follows map iteration order and carries no meaning
// beyond grouping.
func densify(labels map[string]int) Partition {
	remap := make(map[int]int)
	partition := make(Partition, len(labels))
	for id, label := range labels {
		dense, ok := remap[label]
		if !ok {
			dense = len(remap)
			remap[label] = dense
		}
		partition[id] = dense
	}
	return partition
}

type labelPropagationAlgorithm struct{}

func (labelPropagationAlgorithm) Name() string { return "label_propagation" }

// Compute runs synchronous label propagation: each node repeatedly adopts
// the most frequent label among its neighbors until no label changes.
// Parameters: max_iter.
func (labelPropagationAlgorithm) Compute(g *graph.Graph, params Params) (Result, error) {
	maxIter := params.Int("max_iter", 30)

	ids := g.NodeIDs()
	labels := make(map[string]int, len(ids))
	for i, id := range ids {
		labels[id] = i
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		for _, id := range ids {
			counts := make(map[int]int)
			for _, neighbor := range g.Neighbors(id) {
				counts[labels[neighbor]]++
			}

			best := labels[id]
			bestCount := 0
			for label, count := range counts {
				if count > bestCount {
					bestCount = count
					best = label
				}
			}

			if best != labels[id] {
				labels[id] = best
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return densify(labels).Result(), nil
}

type louvainAlgorithm struct{}

func (louvainAlgorithm) Name() string { return "louvain" }

// Compute runs Louvain-style local moving: nodes start in singleton
// communities and greedily move to the neighboring community with the best
// modularity gain until no move improves the partition. Parameters:
// resolution, max_iter.
func (louvainAlgorithm) Compute(g *graph.Graph, params Params) (Result, error) {
	resolution := params.Float("resolution", 1.0)
	maxIter := params.Int("max_iter", 50)

	ids := g.NodeIDs()
	m := float64(g.EdgeCount())
	if m == 0 {
		// No edges: every node is its own community
		labels := make(map[string]int, len(ids))
		for i, id := range ids {
			labels[id] = i
		}
		return densify(labels).Result(), nil
	}

	community := make(map[string]int, len(ids))
	degree := make(map[string]float64, len(ids))
	communityDegree := make(map[int]float64, len(ids))
	for i, id := range ids {
		community[id] = i
		degree[id] = float64(g.Degree(id))
		communityDegree[i] = degree[id]
	}

	for iter := 0; iter < maxIter; iter++ {
		moved := false

		for _, id := range ids {
			current := community[id]

			// Edge weight from id into each neighboring community
			links := make(map[int]float64)
			for _, neighbor := range g.Neighbors(id) {
				if neighbor != id {
					links[community[neighbor]]++
				}
			}

			// Remove id from its community while evaluating moves
			communityDegree[current] -= degree[id]

			best := current
			bestGain := links[current] - resolution*communityDegree[current]*degree[id]/(2*m)
			for candidate, weight := range links {
				if candidate == current {
					continue
				}
				gain := weight - resolution*communityDegree[candidate]*degree[id]/(2*m)
				if gain > bestGain {
					bestGain = gain
					best = candidate
				}
			}

			community[id] = best
			communityDegree[best] += degree[id]
			if best != current {
				moved = true
			}
		}

		if !moved {
			break
		}
	}

	return densify(community).Result(), nil
}

// leidenAlgorithm runs the same local-moving computation as louvain. The
// service has always fallen back to Louvain when no Leiden implementation is
// available, and callers depend on the name being registered.
type leidenAlgorithm struct{}

func (leidenAlgorithm) Name() string { return "leiden" }

func (leidenAlgorithm) Compute(g *graph.Graph, params Params) (Result, error) {
	return louvainAlgorithm{}.Compute(g, params)
}

type greedyModularityAlgorithm struct{}

func (greedyModularityAlgorithm) Name() string { return "greedy_modularity" }

// Compute runs Clauset-Newman-Moore style agglomeration: every node starts
// in its own community and the pair whose merge yields the largest
// modularity gain is merged until no merge improves modularity.
// Parameters: cutoff (stop once this many communities remain).
func (greedyModularityAlgorithm) Compute(g *graph.Graph, params Params) (Result, error) {
	cutoff := params.Int("cutoff", 1)

	ids := g.NodeIDs()
	m := float64(g.EdgeCount())
	if m == 0 {
		labels := make(map[string]int, len(ids))
		for i, id := range ids {
			labels[id] = i
		}
		return densify(labels).Result(), nil
	}

	community := make(map[string]int, len(ids))
	for i, id := range ids {
		community[id] = i
	}

	// between[a][b] holds the fraction of edges joining communities a and b;
	// a < b. strength[a] is the community's degree fraction.
	between := make(map[int]map[int]float64)
	strength := make(map[int]float64, len(ids))
	for _, id := range ids {
		strength[community[id]] = float64(g.Degree(id)) / (2 * m)
	}
	addBetween := func(a, b int, w float64) {
		if a > b {
			a, b = b, a
		}
		row, ok := between[a]
		if !ok {
			row = make(map[int]float64)
			between[a] = row
		}
		row[b] += w
	}
	for _, e := range g.Edges() {
		ca, cb := community[e.Source], community[e.Target]
		if ca != cb {
			addBetween(ca, cb, 1/m)
		}
	}

	live := len(ids)
	for live > cutoff {
		bestGain := 0.0
		bestA, bestB := -1, -1
		for a, row := range between {
			for b, eab := range row {
				gain := 2 * (eab - strength[a]*strength[b])
				if gain > bestGain {
					bestGain = gain
					bestA, bestB = a, b
				}
			}
		}
		if bestA < 0 {
			break
		}

		// Merge bestB into bestA
		for id, c := range community {
			if c == bestB {
				community[id] = bestA
			}
		}
		strength[bestA] += strength[bestB]
		delete(strength, bestB)

		rebuilt := make(map[int]map[int]float64)
		for a, row := range between {
			for b, w := range row {
				x, y := a, b
				if x == bestB {
					x = bestA
				}
				if y == bestB {
					y = bestA
				}
				if x == y {
					continue
				}
				if x > y {
					x, y = y, x
				}
				inner, ok := rebuilt[x]
				if !ok {
					inner = make(map[int]float64)
					rebuilt[x] = inner
				}
				inner[y] += w
			}
		}
		between = rebuilt
		live--
	}

	return densify(community).Result(), nil
}
