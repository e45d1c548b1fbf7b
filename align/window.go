package align

import (
	"strings"
	"unicode/utf8"

	"scirel.ai/deppath/types"
)

// WindowAligner matches the mention against every token window [i..j] whose
// forms are concatenated after dropping ignorable tokens (particles,
// conjunctions, punctuation). Candidates are ranked by category:
//
//  1. exact: window text equals the mention; shortest window, then earliest start
//  2. contained: window text is a substring of the mention; longest text, then earliest start
//  3. covering: mention is a substring of the window text; shortest text, then earliest start
type WindowAligner struct {
	ignored map[string]bool
}

func NewWindowAligner(ignoredForms []string) *WindowAligner {
	ignored := make(map[string]bool, len(ignoredForms))
	for _, form := range ignoredForms {
		ignored[NormalizeText(form)] = true
	}
	return &WindowAligner{ignored: ignored}
}

type windowCandidate struct {
	found bool
	rank  int
	start int
	end   int
}

// offer replaces the candidate when rank is strictly better (lower or higher
// depending on the category). Windows are visited by increasing start, then
// increasing end, so on equal rank the earlier window is kept.
func (c *windowCandidate) offer(rank int, start int, end int, lower bool) {
	if !c.found || (lower && rank < c.rank) || (!lower && rank > c.rank) {
		*c = windowCandidate{found: true, rank: rank, start: start, end: end}
	}
}

func (aligner *WindowAligner) Align(mention string, sent *types.Sentence) (types.Span, bool) {
	norm := NormalizeText(mention)
	if norm == "" {
		return types.Span{}, false
	}

	n := len(sent.Tokens)
	forms := make([]string, n)
	skip := make([]bool, n)
	for i, token := range sent.Tokens {
		forms[i] = NormalizeText(token.Form)
		skip[i] = aligner.ignored[forms[i]] || IsPunct(token.Form)
	}

	var exact, contained, covering windowCandidate
	var joined strings.Builder
	for s := 0; s < n; s++ {
		joined.Reset()
		for e := s; e < n; e++ {
			if !skip[e] {
				joined.WriteString(forms[e])
			}
			text := joined.String()
			if text == "" {
				continue
			}
			switch {
			case text == norm:
				exact.offer(e-s+1, s, e, true)
			case strings.Contains(norm, text):
				contained.offer(utf8.RuneCountInString(text), s, e, false)
			case strings.Contains(text, norm):
				covering.offer(utf8.RuneCountInString(text), s, e, true)
			}
			if covering.found && covering.start == s {
				// longer windows from this start only cover more text
				break
			}
		}
	}

	for _, c := range []windowCandidate{exact, contained, covering} {
		if c.found {
			return types.Span{Start: sent.Tokens[c.start].ID, End: sent.Tokens[c.end].ID}, true
		}
	}
	return types.Span{}, false
}
