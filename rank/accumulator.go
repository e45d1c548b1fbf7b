package rank

import (
	"math"

	"scirel.ai/deppath/types"
)

const epsilon = 1e-12

type bigram struct {
	a, b string
}

// Accumulator holds the corpus-wide unigram and bigram counts of adjacent
// path elements. A new one is built for every ranking run.
type Accumulator struct {
	unigrams     map[string]int
	bigrams      map[bigram]int
	unigramTotal int
	bigramTotal  int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		unigrams: make(map[string]int),
		bigrams:  make(map[bigram]int),
	}
}

func (acc *Accumulator) Add(shape types.PathShape) {
	for _, w := range shape {
		acc.unigrams[w]++
		acc.unigramTotal++
	}
	for i := 1; i < len(shape); i++ {
		acc.bigrams[bigram{shape[i-1], shape[i]}]++
		acc.bigramTotal++
	}
}

func (acc *Accumulator) Unigram(w string) int {
	return acc.unigrams[w]
}

func (acc *Accumulator) Bigram(a string, b string) int {
	return acc.bigrams[bigram{a, b}]
}

// NPMI is the normalized pointwise mutual information of the ordered pair
// (a, b), -1 when the pair was never seen. A pair making up every counted
// bigram scores 1.
func (acc *Accumulator) NPMI(a string, b string) float64 {
	count := acc.Bigram(a, b)
	if count <= 0 {
		return -1
	}
	pab := float64(count) / float64(max(acc.bigramTotal, 1))
	pa, pb := acc.probability(a), acc.probability(b)

	pmi := math.Log(pab/(pa*pb) + epsilon)
	norm := -math.Log(pab + epsilon)
	if norm <= 0 {
		return 1
	}
	return pmi / norm
}

func (acc *Accumulator) probability(w string) float64 {
	count := acc.unigrams[w]
	if count == 0 {
		return epsilon
	}
	return float64(count) / float64(max(acc.unigramTotal, 1))
}

// PairScore weights the positive part of the association by how often the
// pair occurs.
func (acc *Accumulator) PairScore(a string, b string) float64 {
	return math.Max(acc.NPMI(a, b), 0) * math.Log1p(float64(acc.Bigram(a, b)))
}

// Association is the mean PairScore over the adjacent pairs of shape, 0 for
// shapes shorter than two elements.
func (acc *Accumulator) Association(shape types.PathShape) float64 {
	if len(shape) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(shape); i++ {
		sum += acc.PairScore(shape[i-1], shape[i])
	}
	return sum / float64(len(shape)-1)
}
