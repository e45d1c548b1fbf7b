package types

import (
	"fmt"

	"scirel.ai/deppath/utils"
)

// Span is an inclusive token id range inside one sentence.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Bounds returns the span ends in ascending order.
func (span Span) Bounds() (int, int) {
	if span.Start <= span.End {
		return span.Start, span.End
	}
	return span.End, span.Start
}

func (span Span) Contains(id int) bool {
	lo, hi := span.Bounds()
	return id >= lo && id <= hi
}

func (span Span) GetHashCode() uint64 {
	key := fmt.Sprintf("%d_%d", span.Start, span.End)
	return utils.HashString(key)
}

// SentenceSpan is a Span bound to the sentence it was found in.
type SentenceSpan struct {
	Sentence int
	Span     Span
}
