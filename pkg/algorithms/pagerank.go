package algorithms

import (
	"math"

	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
)

// PageRank defaults
const (
	DefaultDampingFactor     = 0.85
	DefaultPageRankIter      = 100
	DefaultPageRankTolerance = 1e-6
)

type pageRankAlgorithm struct{}

func (pageRankAlgorithm) Name() string { return "pagerank" }

// Compute runs iterative PageRank. Parameters: alpha (damping factor),
// max_iter, tol.
func (pageRankAlgorithm) Compute(g *graph.Graph, params Params) (Result, error) {
	alpha := params.Float("alpha", DefaultDampingFactor)
	maxIter := params.Int("max_iter", DefaultPageRankIter)
	tol := params.Float("tol", DefaultPageRankTolerance)

	ids := g.NodeIDs()
	n := float64(len(ids))

	scores := make(Result, len(ids))
	for _, id := range ids {
		scores[id] = 1.0 / n
	}

	outDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		outDegree[id] = g.OutDegree(id)
	}

	next := make(Result, len(ids))
	for iter := 0; iter < maxIter; iter++ {
		// Redistribute rank stuck on dangling nodes uniformly
		dangling := 0.0
		for _, id := range ids {
			if outDegree[id] == 0 {
				dangling += scores[id]
			}
		}

		for _, id := range ids {
			score := (1.0-alpha)/n + alpha*dangling/n
			for _, from := range g.InNeighbors(id) {
				if out := outDegree[from]; out > 0 {
					score += alpha * scores[from] / float64(out)
				}
			}
			next[id] = score
		}

		maxDiff := 0.0
		for _, id := range ids {
			if diff := math.Abs(next[id] - scores[id]); diff > maxDiff {
				maxDiff = diff
			}
		}

		scores, next = next, scores

		if maxDiff < tol {
			break
		}
	}

	// Normalize to sum to 1
	sum := 0.0
	for _, score := range scores {
		sum += score
	}
	if sum > 0 {
		for id := range scores {
			scores[id] /= sum
		}
	}

	return scores, nil
}
