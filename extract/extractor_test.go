package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scirel.ai/deppath/align"
	"scirel.ai/deppath/types"
)

func tok(id int, form string, head int, deprel string) types.Token {
	return types.Token{ID: id, Form: form, Head: head, Deprel: deprel}
}

func testArticle() types.ParsedArticle {
	return types.ParsedArticle{
		Title: "模型评估",
		Sentences: []types.Sentence{
			{Index: 0, Tokens: []types.Token{
				tok(1, "深度", 2, "amod"),
				tok(2, "模型", 5, "nsubj"),
				tok(3, "在", 4, "case"),
				tok(4, "任务", 5, "obl"),
				tok(5, "提升", 0, "root"),
			}},
			{Index: 1, Tokens: []types.Token{
				tok(1, "方法", 2, "nsubj"),
				tok(2, "适用", 0, "root"),
				tok(3, "场景", 2, "obj"),
			}},
		},
	}
}

func testPairs() []types.EntityPairRequest {
	return []types.EntityPairRequest{
		{Subject: "深度模型", Object: "任务", Relation: "应用于"},
		{Subject: "模型", Object: "场景"},
		{Subject: "##OCR乱码", Object: "任务"},
	}
}

func newTestExtractor(t *testing.T, cross bool) (*Extractor, *bytes.Buffer) {
	cfg := types.DefaultConfiguration().Extraction
	cfg.EnableCrossSentence = cross
	ex, err := NewExtractor(cfg)
	require.NoError(t, err)
	var buf bytes.Buffer
	return ex.WithLogger(zerolog.New(&buf)), &buf
}

func recordJSON(t *testing.T, record types.PathRecord) []byte {
	data, err := json.Marshal(record)
	require.NoError(t, err)
	return data
}

func TestExtractIntraSentence(t *testing.T) {
	ex, _ := newTestExtractor(t, true)
	result := ex.Extract(testArticle(), testPairs())

	want := `{
		"subject": "深度模型",
		"object": "任务",
		"relation": "应用于",
		"path": [["深度", "amod"], ["模型", "nsubj"], ["提升", "root"], ["任务", "obl"]],
		"path_type": "intra_sentence",
		"sentence_index": 0,
		"sentence_indexes": [0, 0],
		"path_positions": [
			{"sentence_index": 0, "id": 1},
			{"sentence_index": 0, "id": 2},
			{"sentence_index": 0, "id": 5},
			{"sentence_index": 0, "id": 4}
		]
	}`
	got := recordJSON(t, result.Pairs[0])
	if !jsonpatch.Equal([]byte(want), got) {
		t.Errorf("intra record mismatch: %s", got)
	}
}

func TestExtractCrossSentence(t *testing.T) {
	ex, _ := newTestExtractor(t, true)
	result := ex.Extract(testArticle(), testPairs())

	record := result.Pairs[1]
	require.Equal(t, types.PathTypeCrossSentence, record.PathType)
	require.Nil(t, record.SentenceIndex)
	require.Equal(t, []int{0, 1}, record.SentenceIndexes)
	require.Empty(t, record.Note)
	require.Equal(t, []types.PathPosition{
		{SentenceIndex: 0, ID: 2},
		{SentenceIndex: 0, ID: 5},
		{SentenceIndex: 1, ID: 2},
		{SentenceIndex: 1, ID: 3},
	}, record.PathPositions)
	require.Equal(t, "模型(nsubj) — 提升(root) — 适用(root) — 场景(obj)", record.PathString())

	// sentence 0 tokens first, then sentence 1 tokens only
	switched := 0
	for i := 1; i < len(record.PathPositions); i++ {
		prev, cur := record.PathPositions[i-1].SentenceIndex, record.PathPositions[i].SentenceIndex
		require.LessOrEqual(t, prev, cur)
		if prev != cur {
			switched++
		}
	}
	require.Equal(t, 1, switched)
}

func TestExtractAlignmentFailure(t *testing.T) {
	ex, buf := newTestExtractor(t, true)
	result := ex.Extract(testArticle(), testPairs())

	record := result.Pairs[2]
	require.False(t, record.HasPath())
	require.Equal(t, types.PathTypeNone, record.PathType)
	require.NotEmpty(t, record.Note)
	require.Contains(t, record.Note, "##OCR乱码")

	want := `{"subject": "##OCR乱码", "object": "任务", "path": null, "path_type": "none",
		"sentence_index": null, "path_positions": null, "note": ` + fmt.Sprintf("%q", record.Note) + `}`
	got := recordJSON(t, record)
	if !jsonpatch.Equal([]byte(want), got) {
		t.Errorf("alignment failure record mismatch: %s", got)
	}
	assert.Contains(t, buf.String(), `"event":"ALIGN_FAIL"`)
	assert.Contains(t, buf.String(), `"event":"DONE"`)
}

func TestExtractStats(t *testing.T) {
	ex, _ := newTestExtractor(t, true)
	result := ex.Extract(testArticle(), testPairs())

	require.Equal(t, "模型评估", result.Title)
	require.Len(t, result.Pairs, 3)
	require.Equal(t, types.ArticleStats{
		TotalPairs:             3,
		AlignedPairs:           1,
		PathFound:              1,
		CrossSentencePairs:     1,
		CrossSentencePathFound: 1,
	}, result.Stats)
	require.True(t, result.Config.EnableCrossSentence)
	require.NotNil(t, result.Config.CrossSentenceStrategy)
	require.Equal(t, types.CrossStrategySuperRoot, *result.Config.CrossSentenceStrategy)
}

func TestExtractCrossSentenceDisabled(t *testing.T) {
	ex, buf := newTestExtractor(t, false)
	result := ex.Extract(testArticle(), testPairs())

	record := result.Pairs[1]
	require.False(t, record.HasPath())
	require.Equal(t, types.PathTypeNone, record.PathType)
	require.Equal(t, ErrCrossSentenceDisabled.Error(), record.Note)
	require.Equal(t, 1, result.Stats.CrossSentencePairs)
	require.Equal(t, 0, result.Stats.CrossSentencePathFound)
	require.Equal(t, 1, result.Stats.AlignedPairs)
	require.False(t, result.Config.EnableCrossSentence)
	require.Nil(t, result.Config.CrossSentenceStrategy)
	assert.Contains(t, buf.String(), `"event":"CROSS_DISABLED"`)

	data, err := json.Marshal(result.Config)
	require.NoError(t, err)
	require.JSONEq(t, `{"enable_cross_sentence": false, "cross_sentence_strategy": null}`, string(data))
}

func TestExtractNoPath(t *testing.T) {
	parsed := types.ParsedArticle{
		Title: "断裂",
		Sentences: []types.Sentence{{Tokens: []types.Token{
			tok(1, "图像", 9, "nmod"),
			tok(2, "识别", 0, "root"),
		}}},
	}
	ex, buf := newTestExtractor(t, true)
	result := ex.Extract(parsed, []types.EntityPairRequest{{Subject: "图像", Object: "识别"}})

	record := result.Pairs[0]
	require.False(t, record.HasPath())
	require.Equal(t, types.PathTypeIntraSentence, record.PathType)
	require.NotNil(t, record.SentenceIndex)
	require.Equal(t, 0, *record.SentenceIndex)
	require.Equal(t, ErrPathNotFound.Error(), record.Note)
	require.Equal(t, 1, result.Stats.AlignedPairs)
	require.Equal(t, 0, result.Stats.PathFound)
	assert.Contains(t, buf.String(), `"event":"NO_PATH"`)
}

func TestExtractCrossSentenceAlignedPairs(t *testing.T) {
	ex, _ := newTestExtractor(t, true)
	result := ex.Extract(testArticle(), []types.EntityPairRequest{{Subject: "模型", Object: "场景"}})

	require.True(t, result.Pairs[0].HasPath())
	require.Equal(t, types.ArticleStats{
		TotalPairs:             1,
		CrossSentencePairs:     1,
		CrossSentencePathFound: 1,
	}, result.Stats)
}

// rootlessArticle has a second sentence without a head-0 token, so nothing
// links it to SUPER_ROOT.
func rootlessArticle() types.ParsedArticle {
	return types.ParsedArticle{
		Title: "孤岛",
		Sentences: []types.Sentence{
			{Index: 0, Tokens: []types.Token{
				tok(1, "模型", 2, "nsubj"),
				tok(2, "提升", 0, "root"),
			}},
			{Index: 1, Tokens: []types.Token{
				tok(1, "方法", 2, "nsubj"),
				tok(2, "场景", 1, "obj"),
			}},
		},
	}
}

func TestExtractCrossPathNotFound(t *testing.T) {
	ex, buf := newTestExtractor(t, true)
	result := ex.Extract(rootlessArticle(), []types.EntityPairRequest{{Subject: "模型", Object: "场景"}})

	record := result.Pairs[0]
	require.False(t, record.HasPath())
	require.Equal(t, types.PathTypeCrossSentence, record.PathType)
	require.Equal(t, ErrCrossPathNotFound.Error(), record.Note)
	require.Equal(t, []int{0, 1}, record.SentenceIndexes)
	require.Equal(t, types.ArticleStats{TotalPairs: 1, CrossSentencePairs: 1}, result.Stats)
	assert.Contains(t, buf.String(), `"event":"NO_CROSS_PATH"`)

	want := `{"subject": "模型", "object": "场景", "path": null, "path_type": "cross_sentence",
		"sentence_index": null, "sentence_indexes": [0, 1], "path_positions": null,
		"note": ` + fmt.Sprintf("%q", record.Note) + `}`
	got := recordJSON(t, record)
	if !jsonpatch.Equal([]byte(want), got) {
		t.Errorf("cross path failure record mismatch: %s", got)
	}
}

// ghostAligner grounds every mention of ghosts at a token id the sentence
// does not have, and defers to next otherwise.
type ghostAligner struct {
	next   align.Aligner
	ghosts map[string]bool
}

func (a ghostAligner) Align(mention string, sent *types.Sentence) (types.Span, bool) {
	if a.ghosts[mention] && sent.Index == 1 {
		return types.Span{Start: 9, End: 9}, true
	}
	return a.next.Align(mention, sent)
}

func TestExtractCrossNodeMissing(t *testing.T) {
	ex, buf := newTestExtractor(t, true)
	ex.aligner = ghostAligner{next: ex.aligner, ghosts: map[string]bool{"幽灵": true}}
	parsed := testArticle()
	result := ex.Extract(parsed, []types.EntityPairRequest{{Subject: "模型", Object: "幽灵"}})

	record := result.Pairs[0]
	require.False(t, record.HasPath())
	require.Equal(t, types.PathTypeCrossSentence, record.PathType)
	require.Equal(t, ErrCrossNodeMissing.Error(), record.Note)
	require.Equal(t, 0, result.Stats.CrossSentencePathFound)
	assert.Contains(t, buf.String(), `"event":"CROSS_NODE_MISS"`)
}

func TestExtractSameMentionTwice(t *testing.T) {
	ex, _ := newTestExtractor(t, true)
	result := ex.Extract(testArticle(), []types.EntityPairRequest{{Subject: "任务", Object: "任务"}})

	record := result.Pairs[0]
	require.Equal(t, []types.PathStep{{Form: "任务", Deprel: "obl"}}, record.Path)
}

func TestExtractEmptyArticle(t *testing.T) {
	ex, _ := newTestExtractor(t, true)
	result := ex.Extract(types.ParsedArticle{Title: "空"}, testPairs())
	require.Len(t, result.Pairs, 3)
	for _, record := range result.Pairs {
		require.NotEmpty(t, record.Note)
		require.False(t, record.HasPath())
	}
	require.Equal(t, 0, result.Stats.AlignedPairs)
}

func TestNewExtractorRejectsUnknownStrategy(t *testing.T) {
	cfg := types.DefaultConfiguration().Extraction
	cfg.CrossSentenceStrategy = "nearest"
	_, err := NewExtractor(cfg)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	cfg = types.DefaultConfiguration().Extraction
	cfg.Alignment.Strategy = "fuzzy"
	_, err = NewExtractor(cfg)
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestEventOf(t *testing.T) {
	cases := map[error]string{
		fmt.Errorf("%w (subject %q)", ErrAlignmentFailure, "x"): EventAlignFail,
		ErrPathNotFound:          EventNoPath,
		ErrCrossPathNotFound:     EventNoCrossPath,
		ErrCrossNodeMissing:      EventCrossNodeMiss,
		ErrCrossSentenceDisabled: EventCrossDisabled,
		errors.New("other"):      "",
	}
	for err, want := range cases {
		assert.Equal(t, want, EventOf(err), err.Error())
	}
}
