package rank

import (
	"fmt"
	"sort"
	"strings"

	"scirel.ai/deppath/types"
)

const (
	DefaultCoreTopN     = 20
	DefaultCoreExamples = 2
)

// CoreSplit is a path cut at its root-labelled elements.
type CoreSplit struct {
	SubjectChunk string
	CoreRelation string
	ObjectChunk  string
}

// SplitCore cuts a path into the words before the first root, the words from
// the first to the last root, and the words after the last root. A path
// without a root is all core relation. Words are joined with spaces.
func SplitCore(path []types.PathStep) (CoreSplit, bool) {
	if len(path) == 0 {
		return CoreSplit{}, false
	}
	first, last := -1, -1
	for i, step := range path {
		if strings.EqualFold(step.Deprel, "root") {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return CoreSplit{CoreRelation: joinForms(path)}, true
	}
	return CoreSplit{
		SubjectChunk: joinForms(path[:first]),
		CoreRelation: joinForms(path[first : last+1]),
		ObjectChunk:  joinForms(path[last+1:]),
	}, true
}

func joinForms(steps []types.PathStep) string {
	forms := make([]string, len(steps))
	for i, step := range steps {
		forms[i] = step.Form
	}
	return strings.Join(forms, " ")
}

// SummarizeCoreRelations counts core relations over every record with a
// path and returns the topN most frequent, each with up to maxExamples
// examples in input order. Equal counts keep first-seen order.
func SummarizeCoreRelations(inputs []Input, topN int, maxExamples int) []types.CoreRelationStat {
	stats := make(map[string]*types.CoreRelationStat)
	var order []string
	for _, in := range inputs {
		split, ok := SplitCore(in.Record.Path)
		if !ok || split.CoreRelation == "" {
			continue
		}
		stat, seen := stats[split.CoreRelation]
		if !seen {
			stat = &types.CoreRelationStat{CoreRelation: split.CoreRelation}
			stats[split.CoreRelation] = stat
			order = append(order, split.CoreRelation)
		}
		stat.Frequency++
		if len(stat.Examples) < maxExamples {
			stat.Examples = append(stat.Examples, fmt.Sprintf("[%s](%s) → %s → [%s](%s)",
				in.Record.Subject, split.SubjectChunk, split.CoreRelation, in.Record.Object, split.ObjectChunk))
		}
	}

	summary := make([]types.CoreRelationStat, 0, len(order))
	for _, core := range order {
		summary = append(summary, *stats[core])
	}
	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Frequency > summary[j].Frequency
	})
	if topN > 0 && len(summary) > topN {
		summary = summary[:topN]
	}
	return summary
}
