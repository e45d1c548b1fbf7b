// Package rank scores the dependency paths of a corpus and orders the path
// shapes by how typical they are.
package rank

import (
	"math"
	"sort"

	"scirel.ai/deppath/types"
)

// Input is one extracted pair together with the article it came from.
type Input struct {
	Title  string
	Record types.PathRecord
}

// Inputs flattens article results into ranking inputs.
func Inputs(results ...types.ArticleResult) []Input {
	var inputs []Input
	for _, result := range results {
		for _, record := range result.Pairs {
			inputs = append(inputs, Input{Title: result.Title, Record: record})
		}
	}
	return inputs
}

type shapeEntry struct {
	shape    types.PathShape
	support  int
	docs     map[string]bool
	examples []types.PatternExample
}

// Rank aggregates paths into shapes and returns those passing the support
// and document frequency thresholds, best first. Inputs are not modified.
func Rank(inputs []Input, cfg types.RankingConfig) []types.PatternStat {
	normalizer := NewNormalizer(cfg)
	acc := NewAccumulator()
	table := newShapeTable(types.PathShape.GetHashCode)

	for _, in := range inputs {
		record := in.Record
		if !record.HasPath() {
			continue
		}
		if !cfg.IncludeCrossSentence && record.PathType == types.PathTypeCrossSentence {
			continue
		}
		shape := normalizer.Shape(record.Path)
		if len(shape) == 0 {
			continue
		}

		entry := table.entry(shape)
		entry.support++
		entry.docs[in.Title] = true
		if len(entry.examples) < cfg.MaxExamples {
			entry.examples = append(entry.examples, newExample(in, shape))
		}

		if inLength(shape, cfg) {
			acc.Add(shape)
		}
	}

	var ranked []types.PatternStat
	for _, entry := range table.order {
		if !inLength(entry.shape, cfg) || len(entry.shape) < 2 {
			continue
		}
		if entry.support < cfg.MinSupport || len(entry.docs) < cfg.MinDocFreq {
			continue
		}
		ranked = append(ranked, score(entry, acc, normalizer, cfg))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].PathShape.String() < ranked[j].PathShape.String()
	})
	if cfg.TopK > 0 && len(ranked) > cfg.TopK {
		ranked = ranked[:cfg.TopK]
	}
	return ranked
}

// shapeTable groups paths by shape. Shapes sharing a hash are told apart by
// their elements.
type shapeTable struct {
	hash    func(types.PathShape) uint64
	buckets map[uint64][]*shapeEntry
	order   []*shapeEntry
}

func newShapeTable(hash func(types.PathShape) uint64) *shapeTable {
	return &shapeTable{hash: hash, buckets: make(map[uint64][]*shapeEntry)}
}

// entry returns the entry of shape, creating it on first sight.
func (table *shapeTable) entry(shape types.PathShape) *shapeEntry {
	h := table.hash(shape)
	for _, entry := range table.buckets[h] {
		if sameShape(entry.shape, shape) {
			return entry
		}
	}
	entry := &shapeEntry{shape: shape, docs: make(map[string]bool)}
	table.buckets[h] = append(table.buckets[h], entry)
	table.order = append(table.order, entry)
	return entry
}

func sameShape(a types.PathShape, b types.PathShape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func inLength(shape types.PathShape, cfg types.RankingConfig) bool {
	return len(shape) >= cfg.MinLen && len(shape) <= cfg.MaxLen
}

func score(entry *shapeEntry, acc *Accumulator, normalizer *Normalizer, cfg types.RankingConfig) types.PatternStat {
	assoc := acc.Association(entry.shape)
	docFreq := len(entry.docs)
	s := 0.5*assoc + 0.3*math.Log1p(float64(entry.support)) + 0.2*math.Log1p(float64(docFreq))
	if len(entry.shape) < cfg.ShortPathLength {
		s *= cfg.ShortPathPenalty
	}
	if normalizer.GenericRatio(entry.shape) >= cfg.GenericRatio {
		s *= cfg.GenericPenalty
	}
	return types.PatternStat{
		PathShape:      entry.shape,
		Support:        entry.support,
		DocFreq:        docFreq,
		AvgAssociation: assoc,
		Len:            len(entry.shape),
		Score:          s,
		Examples:       entry.examples,
	}
}

func newExample(in Input, shape types.PathShape) types.PatternExample {
	return types.PatternExample{
		Title:         in.Title,
		Subject:       in.Record.Subject,
		Relation:      in.Record.Relation,
		Object:        in.Record.Object,
		SentenceIndex: in.Record.SentenceIndex,
		PathType:      in.Record.PathType,
		PathString:    shape.String(),
	}
}
