package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"scirel.ai/deppath/corpus"
	"scirel.ai/deppath/extract"
	"scirel.ai/deppath/logger"
	"scirel.ai/deppath/pipeline"
	"scirel.ai/deppath/store"
	"scirel.ai/deppath/types"
)

var (
	depDir      string
	pairDir     string
	outDir      string
	dbPath      string
	logFile     string
	concurrency int
	noCross     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract dependency paths for every article with an entity pair file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if noCross {
			cfg.Extraction.EnableCrossSentence = false
		}
		extractor, err := extract.NewExtractor(cfg.Extraction)
		if err != nil {
			return err
		}

		runLog := logger.NewLogger("Extract")
		if logFile != "" {
			teed, closer, err := logger.WithFile(runLog, "Extract", logFile)
			if err != nil {
				return fmt.Errorf("opening run log: %w", err)
			}
			defer closer.Close()
			runLog = teed
		}
		extractor = extractor.WithLogger(runLog)

		files, missing, err := corpus.Discover(depDir, pairDir)
		if err != nil {
			return err
		}
		for _, title := range missing {
			runLog.Warn().Str("event", corpus.EventMissingPairs).Str("title", title).Msg("No entity pair file for article")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		results, err := pipeline.Batch(ctx, extractor, files, concurrency)
		if err != nil {
			return err
		}

		for _, result := range results {
			if _, err := corpus.WriteResult(outDir, result); err != nil {
				return fmt.Errorf("writing result for %s: %w", result.Title, err)
			}
		}

		runID := ""
		if dbPath != "" {
			if runID, err = saveRun(dbPath, results); err != nil {
				return err
			}
		}

		totals := pipeline.Totals(results)
		runLog.Info().
			Str("event", extract.EventDone).
			Str("run_id", runID).
			Int("articles", len(results)).
			Int("missing_pairs", len(missing)).
			Interface("stats", totals).
			Msg("Finished extraction")
		printTotals(len(results), totals)
		if runID != "" {
			fmt.Printf("  Run id: %s\n", runID)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&depDir, "dep-dir", "", "Directory with <title>_dependency.json parser outputs")
	extractCmd.Flags().StringVar(&pairDir, "pair-dir", "", "Directory with entity pair files")
	extractCmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for <title>依存路径.json results")
	extractCmd.Flags().StringVar(&dbPath, "db", "", "Also store the run in this SQLite database")
	extractCmd.Flags().StringVar(&logFile, "log-file", "", "Append the run log to this file")
	extractCmd.Flags().IntVarP(&concurrency, "jobs", "j", pipeline.DefaultConcurrency, "Articles processed in parallel")
	extractCmd.Flags().BoolVar(&noCross, "no-cross-sentence", false, "Disable cross-sentence paths")
	for _, name := range []string{"dep-dir", "pair-dir", "out-dir"} {
		_ = extractCmd.MarkFlagRequired(name)
	}
}

func saveRun(path string, results []types.ArticleResult) (string, error) {
	db, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer db.Close()

	runID, err := db.NewRun(cfg)
	if err != nil {
		return "", err
	}
	for _, result := range results {
		if err := db.SaveArticleResult(runID, result); err != nil {
			return "", fmt.Errorf("storing %s: %w", result.Title, err)
		}
	}
	return runID, nil
}

func printTotals(articles int, totals types.ArticleStats) {
	fmt.Println("Extraction complete:")
	fmt.Printf("  Articles: %d\n", articles)
	fmt.Printf("  Entity pairs: %d\n", totals.TotalPairs)
	fmt.Printf("  Aligned: %d\n", totals.AlignedPairs)
	fmt.Printf("  Intra-sentence paths: %d\n", totals.PathFound)
	fmt.Printf("  Cross-sentence pairs: %d\n", totals.CrossSentencePairs)
	fmt.Printf("  Cross-sentence paths: %d\n", totals.CrossSentencePathFound)
}
