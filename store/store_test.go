package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"scirel.ai/deppath/types"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "paths.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult(title string) types.ArticleResult {
	zero := 0
	strategy := types.CrossStrategySuperRoot
	return types.ArticleResult{
		Title: title,
		Stats: types.ArticleStats{TotalPairs: 3, AlignedPairs: 2, PathFound: 1, CrossSentencePairs: 1, CrossSentencePathFound: 1},
		Pairs: []types.PathRecord{
			{
				Subject:         "特征",
				Object:          "传感器",
				Relation:        "来源",
				SubjectType:     "概念",
				Path:            []types.PathStep{{Form: "特征", Deprel: "nsubj"}, {Form: "传感器", Deprel: "root"}},
				PathType:        types.PathTypeIntraSentence,
				SentenceIndex:   &zero,
				SentenceIndexes: []int{0, 0},
				PathPositions:   []types.PathPosition{{SentenceIndex: 0, ID: 1}, {SentenceIndex: 0, ID: 3}},
			},
			{
				Subject:         "模型",
				Object:          "场景",
				Path:            []types.PathStep{{Form: "模型", Deprel: "nsubj"}, {Form: "提升", Deprel: "root"}, {Form: "适用", Deprel: "root"}},
				PathType:        types.PathTypeCrossSentence,
				SentenceIndexes: []int{0, 1},
				PathPositions:   []types.PathPosition{{SentenceIndex: 0, ID: 2}, {SentenceIndex: 0, ID: 5}, {SentenceIndex: 1, ID: 2}},
			},
			{
				Subject:  "##OCR",
				Object:   "任务",
				PathType: types.PathTypeNone,
				Note:     "entity mention could not be aligned to any sentence",
			},
		},
		Config: types.ResultConfig{EnableCrossSentence: true, CrossSentenceStrategy: &strategy},
	}
}

func TestOpenMigrates(t *testing.T) {
	db := openTestDB(t)
	version, err := schemaVersion(db.conn)
	require.NoError(t, err)
	require.Equal(t, latestVersion(), version)

	// reopening an up to date database is a no-op
	require.NoError(t, db.Close())
	again, err := Open(db.Path())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestRuns(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LatestRun()
	require.ErrorIs(t, err, ErrNoRuns)

	cfg := types.DefaultConfiguration()
	first, err := db.NewRun(cfg)
	require.NoError(t, err)
	second, err := db.NewRun(cfg)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	latest, err := db.LatestRun()
	require.NoError(t, err)
	require.Equal(t, second, latest)

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, cfg.Ranking.MinSupport, runs[0].Config.Ranking.MinSupport)
}

func TestSaveAndLoadArticleResults(t *testing.T) {
	db := openTestDB(t)
	runID, err := db.NewRun(types.DefaultConfiguration())
	require.NoError(t, err)

	require.NoError(t, db.SaveArticleResult(runID, sampleResult("乙")))
	require.NoError(t, db.SaveArticleResult(runID, sampleResult("甲")))
	// saving again replaces the earlier copy
	require.NoError(t, db.SaveArticleResult(runID, sampleResult("甲")))

	results, err := db.LoadArticleResults(runID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	if diff := cmp.Diff(sampleResult("乙"), results[0]); diff != "" {
		t.Errorf("stored result differs (-want +got):\n%s", diff)
	}

	inputs, err := db.LoadRankInputs(runID)
	require.NoError(t, err)
	require.Len(t, inputs, 6)
	require.Equal(t, "乙", inputs[0].Title)
	require.Equal(t, "甲", inputs[5].Title)
}

func TestSaveArticleResultUnknownRun(t *testing.T) {
	db := openTestDB(t)
	err := db.SaveArticleResult("missing", sampleResult("甲"))
	require.Error(t, err)

	results, err := db.LoadArticleResults("missing")
	require.NoError(t, err)
	require.Empty(t, results)
}
