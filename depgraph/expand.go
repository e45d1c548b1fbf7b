package depgraph

import "scirel.ai/deppath/types"

// Resolver maps a graph key to its token. TokenIndex is the usual one, both
// for a single sentence and for a whole article.
type Resolver interface {
	Resolve(key types.NodeKey) (types.Token, bool)
}

// Node is a resolved path element.
type Node struct {
	Key   types.NodeKey
	Token types.Token
}

// Expand completes an anchor-to-anchor path with the entity span tokens the
// search skipped: subject span tokens missing from base come first, then
// base, then missing object span tokens. Keys appear once, at their first
// position. Keys the resolver does not know, including SUPER_ROOT, are
// dropped.
func Expand(base []types.NodeKey, subject []types.NodeKey, object []types.NodeKey, resolver Resolver) []Node {
	inBase := make(map[types.NodeKey]bool, len(base))
	for _, key := range base {
		inBase[key] = true
	}

	ordered := make([]types.NodeKey, 0, len(subject)+len(base)+len(object))
	for _, key := range subject {
		if !inBase[key] {
			ordered = append(ordered, key)
		}
	}
	ordered = append(ordered, base...)
	for _, key := range object {
		if !inBase[key] {
			ordered = append(ordered, key)
		}
	}

	seen := make(map[types.NodeKey]bool, len(ordered))
	nodes := make([]Node, 0, len(ordered))
	for _, key := range ordered {
		if seen[key] || key.IsSuperRoot() {
			continue
		}
		token, ok := resolver.Resolve(key)
		if !ok {
			continue
		}
		seen[key] = true
		nodes = append(nodes, Node{Key: key, Token: token})
	}
	return nodes
}
