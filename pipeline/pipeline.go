// Package pipeline runs dependency path extraction for requests that carry
// a whole article, and for batches of corpus files.
package pipeline

import (
	"scirel.ai/deppath/corpus"
	"scirel.ai/deppath/extract"
	"scirel.ai/deppath/logger"
	"scirel.ai/deppath/types"
	"scirel.ai/deppath/utils"
)

// Pipeline answers a request with the JSON encoded ArticleResult. The
// channel is closed without a value if the request could not be processed.
type Pipeline func(request Request) <-chan string

func New(cfg types.Configuration) (Pipeline, error) {
	dpeLogger := logger.NewLogger("Dependency path pipeline")
	errLogger := dpeLogger.With().Caller().Logger()
	dpeLogger.Info().
		Str("config_name", cfg.Name).
		Interface("extraction", cfg.Extraction).
		Msg("Starting dependency path pipeline (see parameters in 'extraction' field)")

	extractor, err := extract.NewExtractor(cfg.Extraction)
	if err != nil {
		errLogger.Err(err).
			Interface("extraction", cfg.Extraction).
			Msg("Failed to create extractor")
		return nil, err
	}

	return func(request Request) <-chan string {
		responseChan := make(chan string, 1)
		pplnLog := dpeLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started dependency path pipeline")

		go func() {
			defer close(responseChan)
			res, err := process(extractor.WithLogger(pplnLog), request)
			if err != nil {
				pplnLog.Err(err).Caller().Str("event", corpus.EventOf(err)).Msg("Failed to process request")
				return
			}
			pplnLog.Info().
				Str("title", res.Title).
				Msg("Finished dependency path pipeline")
			responseChan <- res.Data
		}()

		return responseChan
	}, nil
}

func process(extractor *extract.Extractor, request Request) (res Result, err error) {
	defer utils.RecoverWithError(&err)

	article, pairs, err := request.decode()
	if err != nil {
		return Result{}, err
	}
	result := extractor.Extract(article, pairs)
	return newResult(result)
}
