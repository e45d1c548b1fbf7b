package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"scirel.ai/deppath/corpus"
	"scirel.ai/deppath/extract"
	"scirel.ai/deppath/types"
	"scirel.ai/deppath/utils"
)

const DefaultConcurrency = 4

// Batch extracts paths for every article in files using at most concurrency
// goroutines. Results keep the order of files. Articles whose inputs cannot
// be loaded are logged and left out; only cancellation of ctx fails the
// batch.
func Batch(ctx context.Context, extractor *extract.Extractor, files []corpus.ArticleFiles, concurrency int) ([]types.ArticleResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	batchLog := extractor.Logger()

	slots := make([]*types.ArticleResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := extractFiles(extractor, f)
			if err != nil {
				batchLog.Warn().
					Err(err).
					Str("event", corpus.EventOf(err)).
					Str("title", f.Title).
					Msg("Skipped article")
				return nil
			}
			slots[i] = &result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]types.ArticleResult, 0, len(files))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

func extractFiles(extractor *extract.Extractor, files corpus.ArticleFiles) (result types.ArticleResult, err error) {
	defer utils.RecoverWithError(&err)
	article, pairs, err := corpus.LoadArticle(files)
	if err != nil {
		return types.ArticleResult{}, err
	}
	return extractor.Extract(article, pairs), nil
}

// Totals sums the statistics of all results.
func Totals(results []types.ArticleResult) types.ArticleStats {
	var totals types.ArticleStats
	for _, r := range results {
		totals.Add(r.Stats)
	}
	return totals
}
