// Package depgraph turns dependency parses into undirected graphs and finds
// the shortest connection between two entity anchors.
package depgraph

import "scirel.ai/deppath/types"

// Graph is an undirected adjacency map keyed by token. Neighbour lists keep
// edge insertion order, which fixes the order BFS explores them in.
type Graph struct {
	adjacency map[types.NodeKey][]types.NodeKey
	nodes     []types.NodeKey
}

func NewGraph() *Graph {
	return &Graph{adjacency: make(map[types.NodeKey][]types.NodeKey)}
}

func (g *Graph) AddNode(key types.NodeKey) {
	if _, ok := g.adjacency[key]; ok {
		return
	}
	g.adjacency[key] = nil
	g.nodes = append(g.nodes, key)
}

// AddEdge links a and b in both directions, registering missing nodes.
// Self loops are ignored.
func (g *Graph) AddEdge(a types.NodeKey, b types.NodeKey) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	g.adjacency[a] = append(g.adjacency[a], b)
	g.adjacency[b] = append(g.adjacency[b], a)
}

func (g *Graph) HasNode(key types.NodeKey) bool {
	_, ok := g.adjacency[key]
	return ok
}

func (g *Graph) Neighbours(key types.NodeKey) []types.NodeKey {
	return g.adjacency[key]
}

func (g *Graph) Adjacent(a types.NodeKey, b types.NodeKey) bool {
	for _, n := range g.adjacency[a] {
		if n == b {
			return true
		}
	}
	return false
}

// Nodes returns node keys in registration order.
func (g *Graph) Nodes() []types.NodeKey {
	return g.nodes
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// TokenIndex resolves graph keys back to parser tokens.
type TokenIndex map[types.NodeKey]types.Token

func (index TokenIndex) Resolve(key types.NodeKey) (types.Token, bool) {
	token, ok := index[key]
	return token, ok
}

// Keys maps token ids of one sentence to graph keys.
func Keys(sentence int, ids []int) []types.NodeKey {
	keys := make([]types.NodeKey, len(ids))
	for i, id := range ids {
		keys[i] = types.NodeKey{Sentence: sentence, Token: id}
	}
	return keys
}
