package graph

import "container/list"

// Components returns the connected components of the graph as slices of node
// IDs. Directed graphs are treated as undirected (weak connectivity).
// Component order and the order of IDs within a component follow map
// iteration and are not deterministic across runs.
func (g *Graph) Components() [][]string {
	visited := make(map[string]bool, len(g.nodes))
	components := make([][]string, 0)

	for start := range g.nodes {
		if visited[start] {
			continue
		}

		component := make([]string, 0)
		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			id := queue.Remove(queue.Front()).(string)
			component = append(component, id)

			for _, neighbor := range g.Neighbors(id) {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue.PushBack(neighbor)
				}
			}
		}

		components = append(components, component)
	}

	return components
}
