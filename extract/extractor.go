// Package extract produces one dependency path record per entity pair of an
// article.
package extract

import (
	"fmt"

	"github.com/rs/zerolog"

	"scirel.ai/deppath/align"
	"scirel.ai/deppath/depgraph"
	"scirel.ai/deppath/logger"
	"scirel.ai/deppath/types"
)

type Extractor struct {
	cfg     types.ExtractionConfig
	aligner align.Aligner
	log     zerolog.Logger
}

func NewExtractor(cfg types.ExtractionConfig) (*Extractor, error) {
	if cfg.EnableCrossSentence && cfg.CrossSentenceStrategy != types.CrossStrategySuperRoot {
		return nil, fmt.Errorf("%w: unknown cross sentence strategy %q", types.ErrInvalidConfig, cfg.CrossSentenceStrategy)
	}
	aligner, err := align.New(cfg.Alignment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
	}
	return &Extractor{
		cfg:     cfg,
		aligner: aligner,
		log:     logger.NewLogger("Extractor"),
	}, nil
}

// WithLogger returns a copy of the extractor reporting pair events to l.
func (ex *Extractor) WithLogger(l zerolog.Logger) *Extractor {
	clone := *ex
	clone.log = l
	return &clone
}

func (ex *Extractor) Logger() zerolog.Logger {
	return ex.log
}

// article holds the per-article state shared by all pairs. The
// cross-sentence graph is built on first use.
type article struct {
	parsed     *types.ParsedArticle
	cross      *depgraph.Graph
	crossIndex depgraph.TokenIndex
	superRoot  types.NodeKey
}

func (a *article) crossGraph() (*depgraph.Graph, depgraph.TokenIndex) {
	if a.cross == nil {
		a.cross, a.crossIndex, a.superRoot = depgraph.BuildCross(a.parsed.Sentences)
	}
	return a.cross, a.crossIndex
}

// Extract resolves every pair against the article. It never fails: pairs
// that cannot be resolved get a record without a path and a note.
func (ex *Extractor) Extract(parsed types.ParsedArticle, pairs []types.EntityPairRequest) types.ArticleResult {
	a := &article{parsed: &parsed}
	articleLog := ex.log.With().Str("title", parsed.Title).Logger()

	result := types.ArticleResult{
		Title:  parsed.Title,
		Pairs:  make([]types.PathRecord, 0, len(pairs)),
		Config: ex.resultConfig(),
	}
	result.Stats.TotalPairs = len(pairs)

	for _, pair := range pairs {
		record, err := ex.extractPair(a, pair, &result.Stats)
		if err != nil {
			record.Note = err.Error()
			articleLog.Warn().
				Str("event", EventOf(err)).
				Str("subject", pair.Subject).
				Str("relation", pair.Relation).
				Str("object", pair.Object).
				Msg(record.Note)
		}
		result.Pairs = append(result.Pairs, record)
	}

	articleLog.Info().
		Str("event", EventDone).
		Interface("stats", result.Stats).
		Msg("Finished article")
	return result
}

func (ex *Extractor) resultConfig() types.ResultConfig {
	cfg := types.ResultConfig{EnableCrossSentence: ex.cfg.EnableCrossSentence}
	if ex.cfg.EnableCrossSentence {
		strategy := ex.cfg.CrossSentenceStrategy
		cfg.CrossSentenceStrategy = &strategy
	}
	return cfg
}

func newRecord(pair types.EntityPairRequest) types.PathRecord {
	return types.PathRecord{
		Subject:     pair.Subject,
		Object:      pair.Object,
		Relation:    pair.Relation,
		SubjectType: pair.SubjectType,
		ObjectType:  pair.ObjectType,
		PathType:    types.PathTypeNone,
	}
}

func (ex *Extractor) extractPair(a *article, pair types.EntityPairRequest, stats *types.ArticleStats) (types.PathRecord, error) {
	record := newRecord(pair)
	sentences := a.parsed.Sentences

	subj, ok := align.Locate(ex.aligner, pair.Subject, sentences)
	if !ok {
		return record, fmt.Errorf("%w (subject %q)", ErrAlignmentFailure, pair.Subject)
	}
	obj, ok := align.Locate(ex.aligner, pair.Object, sentences)
	if !ok {
		return record, fmt.Errorf("%w (object %q)", ErrAlignmentFailure, pair.Object)
	}
	record.SentenceIndexes = []int{subj.Sentence, obj.Sentence}

	// aligned_pairs counts same-sentence pairs only; cross pairs have their own counter.
	if subj.Sentence == obj.Sentence {
		stats.AlignedPairs++
		return ex.intraSentence(a, record, subj, obj, stats)
	}

	stats.CrossSentencePairs++
	if !ex.cfg.EnableCrossSentence {
		return record, ErrCrossSentenceDisabled
	}
	return ex.crossSentence(a, record, subj, obj, stats)
}

func (ex *Extractor) intraSentence(a *article, record types.PathRecord, subj types.SentenceSpan, obj types.SentenceSpan, stats *types.ArticleStats) (types.PathRecord, error) {
	index := subj.Sentence
	sent := &a.parsed.Sentences[index]
	record.PathType = types.PathTypeIntraSentence
	record.SentenceIndex = &index

	g, tokens := depgraph.BuildSentence(index, sent)
	start := types.NodeKey{Sentence: index, Token: depgraph.Anchor(subj.Span, sent)}
	end := types.NodeKey{Sentence: index, Token: depgraph.Anchor(obj.Span, sent)}
	base, ok := depgraph.ShortestPath(g, start, end)
	if !ok {
		return record, ErrPathNotFound
	}

	nodes := depgraph.Expand(base,
		depgraph.Keys(index, sent.SpanTokenIDs(subj.Span)),
		depgraph.Keys(index, sent.SpanTokenIDs(obj.Span)),
		tokens)
	fillPath(&record, nodes)
	stats.PathFound++
	return record, nil
}

func (ex *Extractor) crossSentence(a *article, record types.PathRecord, subj types.SentenceSpan, obj types.SentenceSpan, stats *types.ArticleStats) (types.PathRecord, error) {
	record.PathType = types.PathTypeCrossSentence
	subjSent := &a.parsed.Sentences[subj.Sentence]
	objSent := &a.parsed.Sentences[obj.Sentence]

	g, tokens := a.crossGraph()
	start := types.NodeKey{Sentence: subj.Sentence, Token: depgraph.Anchor(subj.Span, subjSent)}
	end := types.NodeKey{Sentence: obj.Sentence, Token: depgraph.Anchor(obj.Span, objSent)}
	if !g.HasNode(start) || !g.HasNode(end) {
		return record, ErrCrossNodeMissing
	}

	raw, ok := depgraph.ShortestPath(g, start, end)
	if !ok {
		return record, ErrCrossPathNotFound
	}

	nodes := depgraph.Expand(depgraph.StripSuperRoot(raw),
		depgraph.Keys(subj.Sentence, subjSent.SpanTokenIDs(subj.Span)),
		depgraph.Keys(obj.Sentence, objSent.SpanTokenIDs(obj.Span)),
		tokens)
	fillPath(&record, nodes)
	stats.CrossSentencePathFound++
	return record, nil
}

func fillPath(record *types.PathRecord, nodes []depgraph.Node) {
	record.Path = make([]types.PathStep, len(nodes))
	record.PathPositions = make([]types.PathPosition, len(nodes))
	for i, n := range nodes {
		record.Path[i] = types.PathStep{Form: n.Token.Form, Deprel: n.Token.Deprel}
		record.PathPositions[i] = types.PathPosition{SentenceIndex: n.Key.Sentence, ID: n.Key.Token}
	}
}
