package pipeline

import (
	"encoding/json"
	"fmt"

	"scirel.ai/deppath/corpus"
	"scirel.ai/deppath/types"
)

// Request carries one article: the parser output and the entity pairs, both
// in the same JSON shapes as the corpus files.
type Request struct {
	Tid     string          `json:"tid"`
	Title   string          `json:"title"`
	Article json.RawMessage `json:"article"`
	Pairs   json.RawMessage `json:"pairs"`
}

func (request Request) decode() (types.ParsedArticle, []types.EntityPairRequest, error) {
	if len(request.Article) == 0 {
		return types.ParsedArticle{}, nil, fmt.Errorf("%w: request has no article", corpus.ErrMalformedInput)
	}
	article, err := corpus.DecodeArticle(request.Article)
	if err != nil {
		return types.ParsedArticle{}, nil, fmt.Errorf("decode article: %w", err)
	}
	if request.Title != "" {
		article.Title = request.Title
	}
	if article.Title == "" {
		article.Title = request.Tid
	}

	if len(request.Pairs) == 0 {
		return article, nil, fmt.Errorf("%w: %s", corpus.ErrMissingPairs, article.Title)
	}
	pairs, err := corpus.DecodePairs(request.Pairs)
	if err != nil {
		return article, nil, fmt.Errorf("decode pairs: %w", err)
	}
	return article, pairs, nil
}
