// Package align grounds free-text entity mentions in parser tokens.
package align

import (
	"fmt"

	"scirel.ai/deppath/types"
)

// Aligner finds the token span realising a mention inside one sentence.
// The boolean is false when the mention cannot be grounded there; a found
// span always covers at least one token.
type Aligner interface {
	Align(mention string, sent *types.Sentence) (types.Span, bool)
}

func New(cfg types.AlignmentConfig) (Aligner, error) {
	switch cfg.Strategy {
	case types.AlignStrategyWindow, "":
		ignored := cfg.IgnoredForms
		if ignored == nil {
			ignored = types.DefaultIgnoredForms
		}
		return NewWindowAligner(ignored), nil
	case types.AlignStrategyCoverage:
		return NewCoverageAligner(cfg.F1Threshold), nil
	}
	return nil, fmt.Errorf("unknown alignment strategy %q", cfg.Strategy)
}

// Locate returns the first sentence, in article order, where the mention aligns.
func Locate(aligner Aligner, mention string, sentences []types.Sentence) (types.SentenceSpan, bool) {
	for i := range sentences {
		if span, ok := aligner.Align(mention, &sentences[i]); ok {
			return types.SentenceSpan{Sentence: i, Span: span}, true
		}
	}
	return types.SentenceSpan{}, false
}
