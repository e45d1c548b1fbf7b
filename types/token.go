package types

import (
	"fmt"
	"strings"
)

// Token is one row of dependency parser output. Head is the ID of the
// governing token, 0 for the sentence root.
type Token struct {
	ID     int    `json:"id"`
	Form   string `json:"form"`
	Head   int    `json:"head"`
	Deprel string `json:"deprel"`
	Pos    string `json:"pos,omitempty"`
}

func (token Token) IsRoot() bool {
	return token.Head == 0
}

// IsRootRelation reports whether the parser labelled the token as the root,
// independently of its head pointer.
func (token Token) IsRootRelation() bool {
	return strings.EqualFold(token.Deprel, "root")
}

// NodeKey identifies a token across all sentences of an article.
type NodeKey struct {
	Sentence int
	Token    int
}

// SuperRootKey is the synthetic node linking sentence roots in the
// cross-sentence graph. No real token can carry a negative sentence index.
var SuperRootKey = NodeKey{Sentence: -1, Token: 0}

func (key NodeKey) IsSuperRoot() bool {
	return key == SuperRootKey
}

func (key NodeKey) String() string {
	if key.IsSuperRoot() {
		return "SUPER_ROOT"
	}
	return fmt.Sprintf("%d:%d", key.Sentence, key.Token)
}
