package pipeline

import (
	"scirel.ai/deppath/corpus"
	"scirel.ai/deppath/types"
)

type Result struct {
	Title string
	Stats types.ArticleStats
	Data  string
}

func newResult(result types.ArticleResult) (Result, error) {
	buf, err := corpus.EncodeResult(result)
	if err != nil {
		return Result{}, err
	}
	return Result{Title: result.Title, Stats: result.Stats, Data: string(buf)}, nil
}
