package algorithms

import (
	"container/list"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
)

type betweennessAlgorithm struct{}

func (betweennessAlgorithm) Name() string { return "betweenness_centrality" }

// Compute runs a Brandes pass over unweighted shortest paths and normalizes
// the accumulated scores. No parameters.
func (betweennessAlgorithm) Compute(g *graph.Graph, params Params) (Result, error) {
	ids := g.NodeIDs()
	betweenness := make(Result, len(ids))
	for _, id := range ids {
		betweenness[id] = 0
	}

	for _, source := range ids {
		stack := make([]string, 0, len(ids))
		predecessors := make(map[string][]string, len(ids))
		sigma := make(map[string]float64, len(ids))
		distance := make(map[string]int, len(ids))
		for _, id := range ids {
			sigma[id] = 0
			distance[id] = -1
		}
		sigma[source] = 1
		distance[source] = 0

		queue := list.New()
		queue.PushBack(source)
		for queue.Len() > 0 {
			v := queue.Remove(queue.Front()).(string)
			stack = append(stack, v)

			for _, w := range g.OutNeighbors(v) {
				if distance[w] < 0 {
					queue.PushBack(w)
					distance[w] = distance[v] + 1
				}
				if distance[w] == distance[v]+1 {
					sigma[w] += sigma[v]
					predecessors[w] = append(predecessors[w], v)
				}
			}
		}

		// Back-propagation of pair dependencies
		delta := make(map[string]float64, len(ids))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range predecessors[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1.0 + delta[w])
			}
			if w != source {
				betweenness[w] += delta[w]
			}
		}
	}

	n := float64(len(ids))
	if !g.Directed() {
		// Undirected Brandes counts each pair twice
		for id := range betweenness {
			betweenness[id] /= 2
		}
	}
	if n > 2 {
		scale := 1.0 / ((n - 1) * (n - 2))
		if !g.Directed() {
			scale *= 2
		}
		for id := range betweenness {
			betweenness[id] *= scale
		}
	}

	return betweenness, nil
}

type closenessAlgorithm struct{}

func (closenessAlgorithm) Name() string { return "closeness_centrality" }

// Compute runs BFS from each node over incoming paths and applies the
// Wasserman-Faust reachability correction, so scores stay comparable on
// disconnected graphs. No parameters.
func (closenessAlgorithm) Compute(g *graph.Graph, params Params) (Result, error) {
	ids := g.NodeIDs()
	n := float64(len(ids))
	closeness := make(Result, len(ids))

	for _, source := range ids {
		distanceSum := 0
		reached := 0

		distance := map[string]int{source: 0}
		queue := list.New()
		queue.PushBack(source)
		for queue.Len() > 0 {
			v := queue.Remove(queue.Front()).(string)
			for _, w := range g.InNeighbors(v) {
				if _, seen := distance[w]; !seen {
					distance[w] = distance[v] + 1
					distanceSum += distance[w]
					reached++
					queue.PushBack(w)
				}
			}
		}

		if distanceSum == 0 || n <= 1 {
			closeness[source] = 0
			continue
		}
		r := float64(reached)
		closeness[source] = (r / float64(distanceSum)) * (r / (n - 1))
	}

	return closeness, nil
}

type eigenvectorAlgorithm struct{}

func (eigenvectorAlgorithm) Name() string { return "eigenvector_centrality" }

// Compute runs power iteration. Parameters: max_iter, tol. Fails when the
// iteration does not converge, which the run contract records as an
// algorithm failure.
func (eigenvectorAlgorithm) Compute(g *graph.Graph, params Params) (Result, error) {
	maxIter := params.Int("max_iter", 100)
	tol := params.Float("tol", 1e-6)

	ids := g.NodeIDs()
	n := len(ids)

	scores := make(Result, n)
	for _, id := range ids {
		scores[id] = 1.0 / float64(n)
	}

	for iter := 0; iter < maxIter; iter++ {
		next := make(Result, n)
		for _, id := range ids {
			sum := 0.0
			for _, from := range g.InNeighbors(id) {
				sum += scores[from]
			}
			next[id] = scores[id] + sum
		}

		norm := 0.0
		for _, v := range next {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}
		for id := range next {
			next[id] /= norm
		}

		diff := 0.0
		for _, id := range ids {
			diff += math.Abs(next[id] - scores[id])
		}
		scores = next

		if diff < float64(n)*tol {
			return scores, nil
		}
	}

	return nil, fmt.Errorf("eigenvector centrality failed to converge in %d iterations", maxIter)
}
