package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"scirel.ai/deppath/types"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 72em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25em 0.5em; text-align: left; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Report gathers what a ranking run produced.
type Report struct {
	Title         string
	Articles      int
	Totals        types.ArticleStats
	Patterns      []types.PatternStat
	CoreRelations []types.CoreRelationStat
}

// Markdown renders the report with one table per section.
func (r Report) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Title)

	if r.Articles > 0 {
		t := r.Totals
		sb.WriteString("## Corpus\n\n")
		sb.WriteString("| articles | pairs | aligned | intra-sentence paths | cross-sentence pairs | cross-sentence paths |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d | %d |\n\n",
			r.Articles, t.TotalPairs, t.AlignedPairs, t.PathFound, t.CrossSentencePairs, t.CrossSentencePathFound)
	}

	sb.WriteString("## Typical paths\n\n")
	if len(r.Patterns) == 0 {
		sb.WriteString("No path shape passed the thresholds.\n\n")
	} else {
		sb.WriteString("| rank | path | score | support | doc freq | association | example |\n")
		sb.WriteString("|---|---|---|---|---|---|---|\n")
		for i, stat := range r.Patterns {
			example := ""
			if len(stat.Examples) > 0 {
				e := stat.Examples[0]
				example = fmt.Sprintf("%s: %s / %s", e.Title, e.Subject, e.Object)
			}
			fmt.Fprintf(&sb, "| %d | %s | %.4f | %d | %d | %.4f | %s |\n",
				i+1, cell(stat.PathShape.String()), stat.Score, stat.Support, stat.DocFreq, stat.AvgAssociation, cell(example))
		}
		sb.WriteString("\n")
	}

	if len(r.CoreRelations) > 0 {
		sb.WriteString("## Core relations\n\n")
		sb.WriteString("| core relation | frequency | examples |\n")
		sb.WriteString("|---|---|---|\n")
		for _, stat := range r.CoreRelations {
			fmt.Fprintf(&sb, "| %s | %d | %s |\n",
				cell(stat.CoreRelation), stat.Frequency, cell(strings.Join(stat.Examples, "; ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`)

func cell(s string) string {
	return cellEscaper.Replace(s)
}

// RenderHTML converts the Markdown report to a standalone HTML page.
func RenderHTML(w io.Writer, r Report) error {
	var body bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &body); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	return page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{r.Title, template.HTML(body.String())}) //nolint: gosec
}
