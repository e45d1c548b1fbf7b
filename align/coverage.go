package align

import (
	"sort"
	"strings"
	"unicode/utf8"

	"scirel.ai/deppath/types"
)

// CoverageAligner decomposes the mention into sentence token strings
// (longest first) and keeps the token window with the best F1 overlap
// against that word set. A window is accepted only if its F1 exceeds the
// threshold.
type CoverageAligner struct {
	threshold float64
}

func NewCoverageAligner(threshold float64) *CoverageAligner {
	return &CoverageAligner{threshold: threshold}
}

// Decompose greedily splits mention into strings from vocabulary, always
// trying the longest entry first. It stops at the first position no entry
// matches, so the result may cover only a prefix of the mention.
func Decompose(mention string, vocabulary []string) []string {
	rest := NormalizeText(mention)
	words := uniqueByLength(vocabulary)

	var parts []string
	for rest != "" {
		matched := false
		for _, word := range words {
			if strings.HasPrefix(rest, word) {
				parts = append(parts, word)
				rest = rest[len(word):]
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	return parts
}

func uniqueByLength(vocabulary []string) []string {
	seen := make(map[string]bool, len(vocabulary))
	words := make([]string, 0, len(vocabulary))
	for _, w := range vocabulary {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(words[i]), utf8.RuneCountInString(words[j])
		if li != lj {
			return li > lj
		}
		return words[i] < words[j]
	})
	return words
}

func (aligner *CoverageAligner) Align(mention string, sent *types.Sentence) (types.Span, bool) {
	forms := make([]string, len(sent.Tokens))
	for i, token := range sent.Tokens {
		forms[i] = NormalizeText(token.Form)
	}

	entityWords := make(map[string]bool)
	for _, w := range Decompose(mention, forms) {
		entityWords[w] = true
	}
	if len(entityWords) == 0 {
		return types.Span{}, false
	}

	bestScore := -1.0
	bestStart, bestEnd := -1, -1
	for i := range forms {
		windowWords := make(map[string]bool)
		for j := i; j < len(forms); j++ {
			windowWords[forms[j]] = true
			if j-i+1 < len(entityWords) {
				continue
			}
			f1 := overlapF1(windowWords, entityWords)
			if f1 == 0 {
				continue
			}
			if f1 > bestScore || (f1 == bestScore && j-i < bestEnd-bestStart) {
				bestScore, bestStart, bestEnd = f1, i, j
			}
		}
	}

	if bestStart < 0 || bestScore <= aligner.threshold {
		return types.Span{}, false
	}
	return types.Span{Start: sent.Tokens[bestStart].ID, End: sent.Tokens[bestEnd].ID}, true
}

func overlapF1(window map[string]bool, entity map[string]bool) float64 {
	common := 0
	for w := range window {
		if entity[w] {
			common++
		}
	}
	if common == 0 {
		return 0
	}
	precision := float64(common) / float64(len(window))
	recall := float64(common) / float64(len(entity))
	return 2 * precision * recall / (precision + recall)
}
