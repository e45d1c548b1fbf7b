package depgraph

import "scirel.ai/deppath/types"

// Anchor picks the token standing for a span during path search: the first
// span token, in sentence order, whose head is 0 or lies outside the span.
// When every head stays inside the span the last span token is used, and an
// empty span falls back to its start id.
func Anchor(span types.Span, sent *types.Sentence) int {
	ids := sent.SpanTokenIDs(span)
	if len(ids) == 0 {
		return span.Start
	}
	inSpan := make(map[int]bool, len(ids))
	for _, id := range ids {
		inSpan[id] = true
	}
	for _, token := range sent.Tokens {
		if inSpan[token.ID] && (token.IsRoot() || !inSpan[token.Head]) {
			return token.ID
		}
	}
	return ids[len(ids)-1]
}
