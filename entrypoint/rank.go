package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scirel.ai/deppath/corpus"
	"scirel.ai/deppath/pipeline"
	"scirel.ai/deppath/rank"
	"scirel.ai/deppath/report"
	"scirel.ai/deppath/store"
	"scirel.ai/deppath/types"
)

const (
	patternsCSV      = "patterns.csv"
	patternsJSONL    = "patterns.jsonl"
	coreRelationsCSV = "core_relations.csv"
	reportHTML       = "report.html"
)

var (
	resultsDir     string
	runID          string
	rankOutDir     string
	representation string
	topK           int
	rankNoCross    bool
	coreTop        int
	coreExamples   int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the path shapes of extracted results",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("representation") {
			cfg.Ranking.Representation = representation
		}
		if cmd.Flags().Changed("top-k") {
			cfg.Ranking.TopK = topK
		}
		if rankNoCross {
			cfg.Ranking.IncludeCrossSentence = false
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		results, err := loadResults()
		if err != nil {
			return err
		}
		inputs := rank.Inputs(results...)
		patterns := rank.Rank(inputs, cfg.Ranking)
		core := rank.SummarizeCoreRelations(inputs, coreTop, coreExamples)
		mainLogger.Info().
			Int("articles", len(results)).
			Int("inputs", len(inputs)).
			Int("patterns", len(patterns)).
			Int("core_relations", len(core)).
			Msg("Ranked path shapes")

		if err := os.MkdirAll(rankOutDir, 0o755); err != nil {
			return err
		}
		if err := writeOutput(patternsCSV, func(w io.Writer) error { return report.WriteCSV(w, patterns) }); err != nil {
			return err
		}
		if err := writeOutput(patternsJSONL, func(w io.Writer) error { return report.WriteJSONL(w, patterns) }); err != nil {
			return err
		}
		if err := writeOutput(coreRelationsCSV, func(w io.Writer) error { return report.WriteCoreCSV(w, core) }); err != nil {
			return err
		}
		r := report.Report{
			Title:         "Dependency path patterns",
			Articles:      len(results),
			Totals:        pipeline.Totals(results),
			Patterns:      patterns,
			CoreRelations: core,
		}
		if err := writeOutput(reportHTML, func(w io.Writer) error { return report.RenderHTML(w, r) }); err != nil {
			return err
		}
		fmt.Printf("Ranked %d path shapes from %d articles into %s\n", len(patterns), len(results), rankOutDir)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the most frequent core relations",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := loadInputs()
		if err != nil {
			return err
		}
		core := rank.SummarizeCoreRelations(inputs, coreTop, coreExamples)
		if len(core) == 0 {
			fmt.Println("No core relations found")
			return nil
		}
		for i, stat := range core {
			fmt.Printf("%3d. %s (%d)\n", i+1, stat.CoreRelation, stat.Frequency)
			for _, example := range stat.Examples {
				fmt.Printf("       %s\n", example)
			}
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{rankCmd, summaryCmd} {
		cmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory with <title>依存路径.json results")
		cmd.Flags().StringVar(&dbPath, "db", "", "Read results from this SQLite database instead")
		cmd.Flags().StringVar(&runID, "run", "", "Run id to read from the database (default latest)")
		cmd.Flags().IntVar(&coreTop, "core-top", rank.DefaultCoreTopN, "Number of core relations to keep")
		cmd.Flags().IntVar(&coreExamples, "core-examples", rank.DefaultCoreExamples, "Examples kept per core relation")
	}
	rankCmd.Flags().StringVar(&rankOutDir, "out-dir", ".", "Directory for the ranking outputs")
	rankCmd.Flags().StringVar(&representation, "representation", "", "Path representation: form or deprel")
	rankCmd.Flags().IntVar(&topK, "top-k", 0, "Keep only the best k shapes (0 keeps all)")
	rankCmd.Flags().BoolVar(&rankNoCross, "no-cross-sentence", false, "Leave cross-sentence paths out of the ranking")
}

func loadResults() ([]types.ArticleResult, error) {
	switch {
	case dbPath != "":
		db, err := store.Open(dbPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		id, err := selectedRun(db)
		if err != nil {
			return nil, err
		}
		return db.LoadArticleResults(id)
	case resultsDir != "":
		return corpus.ReadResults(resultsDir)
	}
	return nil, errors.New("either --results-dir or --db is required")
}

func loadInputs() ([]rank.Input, error) {
	if dbPath == "" {
		results, err := loadResults()
		if err != nil {
			return nil, err
		}
		return rank.Inputs(results...), nil
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	id, err := selectedRun(db)
	if err != nil {
		return nil, err
	}
	return db.LoadRankInputs(id)
}

func selectedRun(db *store.DB) (string, error) {
	if runID != "" {
		return runID, nil
	}
	id, err := db.LatestRun()
	if err != nil {
		return "", err
	}
	mainLogger.Info().Str("run_id", id).Msg("Using latest run")
	return id, nil
}

func writeOutput(name string, write func(w io.Writer) error) (err error) {
	path := filepath.Join(rankOutDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
