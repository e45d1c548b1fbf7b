package depgraph

import "scirel.ai/deppath/types"

// ShortestPath runs a breadth-first search from start to end and returns the
// first minimum-edge path found, endpoints included. Neighbours are expanded
// in insertion order, so ties resolve the same way for the same input.
// The boolean is false when either endpoint is missing or the two are not
// connected.
func ShortestPath(g *Graph, start types.NodeKey, end types.NodeKey) ([]types.NodeKey, bool) {
	if start == end {
		return []types.NodeKey{start}, true
	}
	if !g.HasNode(start) || !g.HasNode(end) {
		return nil, false
	}

	parent := map[types.NodeKey]types.NodeKey{start: start}
	queue := []types.NodeKey{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Neighbours(cur) {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			if next == end {
				return walkBack(parent, start, end), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func walkBack(parent map[types.NodeKey]types.NodeKey, start types.NodeKey, end types.NodeKey) []types.NodeKey {
	var path []types.NodeKey
	for key := end; ; key = parent[key] {
		path = append(path, key)
		if key == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// StripSuperRoot drops the synthetic node from a cross-sentence path.
func StripSuperRoot(path []types.NodeKey) []types.NodeKey {
	stripped := make([]types.NodeKey, 0, len(path))
	for _, key := range path {
		if !key.IsSuperRoot() {
			stripped = append(stripped, key)
		}
	}
	return stripped
}
