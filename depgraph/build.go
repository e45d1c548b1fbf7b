package depgraph

import "scirel.ai/deppath/types"

// BuildSentence builds the graph of one sentence: every non-root token is
// linked to its head. Heads that do not exist in the sentence produce no
// edge. index is the sentence position used in the node keys.
func BuildSentence(index int, sent *types.Sentence) (*Graph, TokenIndex) {
	g := NewGraph()
	tokens := make(TokenIndex, len(sent.Tokens))
	addSentence(g, tokens, index, sent)
	return g, tokens
}

// BuildCross unions all sentence graphs of an article and links every root
// token to the shared SUPER_ROOT node. Sentence keys use the slice position.
func BuildCross(sentences []types.Sentence) (*Graph, TokenIndex, types.NodeKey) {
	g := NewGraph()
	tokens := make(TokenIndex)
	var roots []types.NodeKey
	for i := range sentences {
		roots = append(roots, addSentence(g, tokens, i, &sentences[i])...)
	}
	for _, root := range roots {
		g.AddEdge(types.SuperRootKey, root)
	}
	return g, tokens, types.SuperRootKey
}

func addSentence(g *Graph, tokens TokenIndex, index int, sent *types.Sentence) []types.NodeKey {
	for _, token := range sent.Tokens {
		key := types.NodeKey{Sentence: index, Token: token.ID}
		tokens[key] = token
		g.AddNode(key)
	}

	var roots []types.NodeKey
	for _, token := range sent.Tokens {
		key := types.NodeKey{Sentence: index, Token: token.ID}
		if token.IsRoot() {
			roots = append(roots, key)
			continue
		}
		head := types.NodeKey{Sentence: index, Token: token.Head}
		if _, ok := tokens[head]; !ok {
			continue
		}
		g.AddEdge(key, head)
	}
	return roots
}
