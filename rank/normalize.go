package rank

import (
	"strings"

	"scirel.ai/deppath/types"
)

var invisible = strings.NewReplacer("\u200b", "", "\ufeff", "")

// Normalizer turns extracted paths into path shapes.
type Normalizer struct {
	representation string
	synonyms       map[string]string
	generic        map[string]bool
}

func NewNormalizer(cfg types.RankingConfig) *Normalizer {
	generic := make(map[string]bool, len(cfg.GenericWords))
	for _, w := range cfg.GenericWords {
		generic[w] = true
	}
	representation := cfg.Representation
	if representation == "" {
		representation = types.RepresentationForm
	}
	return &Normalizer{
		representation: representation,
		synonyms:       cfg.Synonyms,
		generic:        generic,
	}
}

// Word trims a surface form, removes zero-width characters and folds it to
// its canonical synonym.
func (n *Normalizer) Word(form string) string {
	s := invisible.Replace(strings.TrimSpace(form))
	if canonical, ok := n.synonyms[s]; ok {
		return canonical
	}
	return s
}

// Shape maps a path to its forms or relation labels. Empty elements are
// dropped.
func (n *Normalizer) Shape(path []types.PathStep) types.PathShape {
	shape := make(types.PathShape, 0, len(path))
	for _, step := range path {
		var element string
		if n.representation == types.RepresentationDeprel {
			element = strings.ToLower(strings.TrimSpace(step.Deprel))
		} else {
			element = n.Word(step.Form)
		}
		if element != "" {
			shape = append(shape, element)
		}
	}
	return shape
}

func (n *Normalizer) IsGeneric(word string) bool {
	return n.generic[word]
}

// GenericRatio is the share of shape elements that carry little meaning.
func (n *Normalizer) GenericRatio(shape types.PathShape) float64 {
	if len(shape) == 0 {
		return 0
	}
	generic := 0
	for _, w := range shape {
		if n.generic[w] {
			generic++
		}
	}
	return float64(generic) / float64(len(shape))
}
