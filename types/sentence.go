package types

// Sentence is the parser output for one sentence of an article. Tokens keep
// the parser order.
type Sentence struct {
	Index  int
	Text   string
	Tokens []Token
}

func (sent *Sentence) TokenByID(id int) (Token, bool) {
	for _, token := range sent.Tokens {
		if token.ID == id {
			return token, true
		}
	}
	return Token{}, false
}

// SpanTokenIDs returns the ids of the sentence tokens inside span, in
// sentence order.
func (sent *Sentence) SpanTokenIDs(span Span) []int {
	lo, hi := span.Bounds()
	var ids []int
	for _, token := range sent.Tokens {
		if token.ID >= lo && token.ID <= hi {
			ids = append(ids, token.ID)
		}
	}
	return ids
}

func (sent *Sentence) Forms() []string {
	forms := make([]string, len(sent.Tokens))
	for i, token := range sent.Tokens {
		forms[i] = token.Form
	}
	return forms
}

// ParsedArticle is the external parser output for one article.
type ParsedArticle struct {
	Title     string
	Summary   string
	Sentences []Sentence
}
