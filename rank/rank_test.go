package rank

import (
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scirel.ai/deppath/types"
)

func steps(forms ...string) []types.PathStep {
	path := make([]types.PathStep, len(forms))
	for i, f := range forms {
		path[i] = types.PathStep{Form: f, Deprel: "dep"}
	}
	return path
}

func input(title string, pathType types.PathType, forms ...string) Input {
	return Input{Title: title, Record: types.PathRecord{
		Subject:  forms[0],
		Object:   forms[len(forms)-1],
		Path:     steps(forms...),
		PathType: pathType,
	}}
}

func corpus() []Input {
	intra := types.PathTypeIntraSentence
	cross := types.PathTypeCrossSentence
	return []Input{
		input("d1", intra, "模型", "提升", "性能"),
		input("d2", intra, "模型", "提升", "性能"),
		input("d3", intra, "模型", "提升", "性能"),
		input("d1", intra, "方案", "解决", "问题"),
		input("d2", intra, "方法", "处理", "难题"),
		input("d1", intra, "特征", "来自"),
		input("d1", intra, "孤立"),
		input("d1", cross, "数据", "驱动", "诊断"),
		input("d2", cross, "数据", "驱动", "诊断"),
		input("d3", intra, "一", "二", "三", "四", "五", "六", "七"),
		input("d3", intra, "一", "二", "三", "四", "五", "六", "七"),
		{Title: "d3", Record: types.PathRecord{Subject: "空", Object: "路径", PathType: types.PathTypeNone}},
	}
}

func testConfig() types.RankingConfig {
	cfg := types.DefaultConfiguration().Ranking
	cfg.MinSupport = 2
	cfg.MinDocFreq = 2
	return cfg
}

func shapes(stats []types.PatternStat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.PathShape.String()
	}
	return out
}

func TestRankFilters(t *testing.T) {
	ranked := Rank(corpus(), testConfig())
	got := shapes(ranked)
	sort.Strings(got)
	require.Equal(t, []string{"数据->驱动->诊断", "方法->解决->问题", "模型->提升->性能"}, got)

	for _, stat := range ranked {
		switch stat.PathShape.String() {
		case "模型->提升->性能":
			require.Equal(t, 3, stat.Support)
			require.Equal(t, 3, stat.DocFreq)
		case "方法->解决->问题":
			require.Equal(t, 2, stat.Support)
			require.Equal(t, 2, stat.DocFreq)
		}
		require.Equal(t, len(stat.PathShape), stat.Len)
	}
}

func TestRankOrdersByScore(t *testing.T) {
	ranked := Rank(corpus(), testConfig())
	require.NotEmpty(t, ranked)
	require.Equal(t, "模型->提升->性能", ranked[0].PathShape.String())
	for i := 1; i < len(ranked); i++ {
		require.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankExcludesCrossSentence(t *testing.T) {
	cfg := testConfig()
	cfg.IncludeCrossSentence = false
	require.NotContains(t, shapes(Rank(corpus(), cfg)), "数据->驱动->诊断")
}

func TestRankIsIdempotent(t *testing.T) {
	in := corpus()
	before := corpus()
	first := Rank(in, testConfig())
	second := Rank(in, testConfig())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("inputs were modified (-before +after):\n%s", diff)
	}
}

func TestRankFilterMonotonicity(t *testing.T) {
	prev := math.MaxInt32
	for support := 0; support <= 4; support++ {
		cfg := testConfig()
		cfg.MinSupport = support
		n := len(Rank(corpus(), cfg))
		require.LessOrEqual(t, n, prev, "min_support %d", support)
		prev = n
	}
	prev = math.MaxInt32
	for docs := 0; docs <= 4; docs++ {
		cfg := testConfig()
		cfg.MinDocFreq = docs
		n := len(Rank(corpus(), cfg))
		require.LessOrEqual(t, n, prev, "min_doc_freq %d", docs)
		prev = n
	}
}

func TestRankExamplesAndTopK(t *testing.T) {
	cfg := testConfig()
	cfg.MaxExamples = 2
	cfg.TopK = 1
	ranked := Rank(corpus(), cfg)
	require.Len(t, ranked, 1)
	require.Len(t, ranked[0].Examples, 2)
	require.Equal(t, types.PatternExample{
		Title:      "d1",
		Subject:    "模型",
		Object:     "性能",
		PathType:   types.PathTypeIntraSentence,
		PathString: "模型->提升->性能",
	}, ranked[0].Examples[0])
}

func TestRankScoreFormula(t *testing.T) {
	cfg := testConfig()
	cfg.MinSupport = 1
	cfg.MinDocFreq = 1
	in := []Input{
		input("d1", types.PathTypeIntraSentence, "进行", "研究"),
		input("d2", types.PathTypeIntraSentence, "进行", "研究"),
	}
	ranked := Rank(in, cfg)
	require.Len(t, ranked, 1)

	// one bigram type only, so nPMI is 1 and the association is log(1+2)
	assoc := math.Log(3)
	base := 0.5*assoc + 0.3*math.Log(3) + 0.2*math.Log(3)
	assert.InDelta(t, assoc, ranked[0].AvgAssociation, 1e-9)
	assert.InDelta(t, base*0.85*0.85, ranked[0].Score, 1e-9)
}

func TestRankDeprelRepresentation(t *testing.T) {
	cfg := testConfig()
	cfg.Representation = types.RepresentationDeprel
	cfg.MinSupport = 1
	cfg.MinDocFreq = 1
	in := []Input{{Title: "d1", Record: types.PathRecord{
		Path: []types.PathStep{{Form: "模型", Deprel: "NSUBJ"}, {Form: "提升", Deprel: "root"}},
	}}}
	ranked := Rank(in, cfg)
	require.Len(t, ranked, 1)
	require.Equal(t, types.PathShape{"nsubj", "root"}, ranked[0].PathShape)
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(types.PathShape{"a", "b"})
	acc.Add(types.PathShape{"a", "b"})
	acc.Add(types.PathShape{"a", "c"})

	require.Equal(t, 3, acc.Unigram("a"))
	require.Equal(t, 2, acc.Bigram("a", "b"))
	require.Equal(t, 0, acc.Bigram("b", "a"))

	pab := 2.0 / 3
	want := math.Log(pab/(0.5*(2.0/6))+epsilon) / -math.Log(pab+epsilon)
	assert.InDelta(t, want, acc.NPMI("a", "b"), 1e-9)
	assert.Equal(t, -1.0, acc.NPMI("b", "a"))
	assert.Equal(t, 0.0, acc.PairScore("b", "a"))
	assert.InDelta(t, want*math.Log(3), acc.PairScore("a", "b"), 1e-9)
	assert.Equal(t, 0.0, acc.Association(types.PathShape{"a"}))
}

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(types.DefaultConfiguration().Ranking)
	assert.Equal(t, "方法", n.Word(" 方案\u200b"))
	assert.Equal(t, "问题", n.Word("\ufeff难题"))
	assert.Equal(t, "模型", n.Word("模型"))
	assert.True(t, n.IsGeneric("进行"))
	assert.Equal(t, types.PathShape{"方法", "解决"}, n.Shape(steps("手段", " ", "处理")))
	assert.InDelta(t, 0.5, n.GenericRatio(types.PathShape{"研究", "模型"}), 1e-9)
	assert.Equal(t, 0.0, n.GenericRatio(nil))
}

func TestInputs(t *testing.T) {
	results := []types.ArticleResult{
		{Title: "a", Pairs: []types.PathRecord{{Subject: "x"}, {Subject: "y"}}},
		{Title: "b", Pairs: []types.PathRecord{{Subject: "z"}}},
	}
	in := Inputs(results...)
	require.Len(t, in, 3)
	require.Equal(t, "b", in[2].Title)
	require.Equal(t, "z", in[2].Record.Subject)
}

func TestSplitCore(t *testing.T) {
	path := []types.PathStep{
		{Form: "深度", Deprel: "amod"},
		{Form: "模型", Deprel: "nsubj"},
		{Form: "提升", Deprel: "root"},
		{Form: "任务", Deprel: "obl"},
	}
	split, ok := SplitCore(path)
	require.True(t, ok)
	require.Equal(t, CoreSplit{SubjectChunk: "深度 模型", CoreRelation: "提升", ObjectChunk: "任务"}, split)

	split, _ = SplitCore([]types.PathStep{
		{Form: "模型", Deprel: "nsubj"},
		{Form: "提升", Deprel: "ROOT"},
		{Form: "适用", Deprel: "root"},
		{Form: "场景", Deprel: "obj"},
	})
	require.Equal(t, "提升 适用", split.CoreRelation)
	require.Equal(t, "场景", split.ObjectChunk)

	split, _ = SplitCore(steps("图像", "识别"))
	require.Equal(t, CoreSplit{CoreRelation: "图像 识别"}, split)

	_, ok = SplitCore(nil)
	require.False(t, ok)
}

func TestSummarizeCoreRelations(t *testing.T) {
	rooted := func(subject, verb, object string) Input {
		return Input{Record: types.PathRecord{
			Subject: subject,
			Object:  object,
			Path: []types.PathStep{
				{Form: subject, Deprel: "nsubj"},
				{Form: verb, Deprel: "root"},
				{Form: object, Deprel: "obj"},
			},
		}}
	}
	in := []Input{
		rooted("模型", "提升", "性能"),
		rooted("方法", "适用", "场景"),
		rooted("算法", "提升", "精度"),
		rooted("系统", "提升", "效率"),
		{Record: types.PathRecord{Subject: "无", Object: "路径"}},
	}
	summary := SummarizeCoreRelations(in, 1, 2)
	require.Len(t, summary, 1)
	require.Equal(t, "提升", summary[0].CoreRelation)
	require.Equal(t, 3, summary[0].Frequency)
	require.Equal(t, []string{
		"[模型](模型) → 提升 → [性能](性能)",
		"[算法](算法) → 提升 → [精度](精度)",
	}, summary[0].Examples)

	all := SummarizeCoreRelations(in, 0, 1)
	require.Len(t, all, 2)
	require.Equal(t, "适用", all[1].CoreRelation)
}

func TestShapeTableSeparatesCollidingShapes(t *testing.T) {
	collide := func(types.PathShape) uint64 { return 7 }
	table := newShapeTable(collide)

	a := table.entry(types.PathShape{"模型", "提升", "性能"})
	b := table.entry(types.PathShape{"方法", "解决", "问题"})
	again := table.entry(types.PathShape{"模型", "提升", "性能"})

	require.NotSame(t, a, b)
	require.Same(t, a, again)
	require.Len(t, table.order, 2)
	require.Len(t, table.buckets[7], 2)
	require.NotSame(t, table.entry(types.PathShape{"模型", "提升"}), a)
}
