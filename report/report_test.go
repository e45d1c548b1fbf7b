package report

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scirel.ai/deppath/types"
)

func samplePatterns() []types.PatternStat {
	zero := 0
	return []types.PatternStat{
		{
			PathShape:      types.PathShape{"模型", "提升", "性能"},
			Support:        3,
			DocFreq:        3,
			AvgAssociation: 2.125,
			Len:            3,
			Score:          1.75,
			Examples: []types.PatternExample{{
				Title: "d1", Subject: "模型", Object: "性能", SentenceIndex: &zero,
				PathType: types.PathTypeIntraSentence, PathString: "模型->提升->性能",
			}},
		},
		{
			PathShape: types.PathShape{"a|b", "c"},
			Support:   2,
			DocFreq:   2,
			Len:       2,
			Score:     0.5,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samplePatterns()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, patternHeader, rows[0])
	assert.Equal(t, []string{"1", "1.750000", "3", "3", "2.125000", "3", "模型->提升->性能"}, rows[1])
	assert.Equal(t, "2", rows[2][0])
}

func TestWriteCoreCSV(t *testing.T) {
	var buf bytes.Buffer
	core := []types.CoreRelationStat{{CoreRelation: "提升", Frequency: 3, Examples: []string{"a", "b"}}}
	require.NoError(t, WriteCoreCSV(&buf, core))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"提升", "3", "a; b"}, rows[1])
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, samplePatterns()))

	scanner := bufio.NewScanner(&buf)
	var lines []map[string]interface{}
	for scanner.Scan() {
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &doc))
		lines = append(lines, doc)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, []interface{}{"模型", "提升", "性能"}, lines[0]["path_shape"])
	assert.Len(t, lines[0]["samples"], 1)
	assert.NotContains(t, lines[1], "samples")
}

func TestMarkdownAndHTML(t *testing.T) {
	r := Report{
		Title:         "Typical dependency paths",
		Articles:      2,
		Totals:        types.ArticleStats{TotalPairs: 5, AlignedPairs: 4, PathFound: 3},
		Patterns:      samplePatterns(),
		CoreRelations: []types.CoreRelationStat{{CoreRelation: "提升", Frequency: 3, Examples: []string{"[模型](模型) → 提升 → [性能](性能)"}}},
	}

	text := r.Markdown()
	assert.Contains(t, text, "| 1 | 模型->提升->性能 |")
	assert.Contains(t, text, `a\|b->c`)
	assert.Contains(t, text, "## Core relations")

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, r))
	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>模型-&gt;提升-&gt;性能</td>")
	assert.Contains(t, html, "<title>Typical dependency paths</title>")
}

func TestMarkdownWithoutPatterns(t *testing.T) {
	text := Report{Title: "empty"}.Markdown()
	assert.Contains(t, text, "No path shape passed the thresholds.")
	assert.NotContains(t, text, "## Corpus")
}
