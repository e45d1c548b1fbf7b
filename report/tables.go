// Package report writes ranking results as CSV, JSON lines, Markdown and
// HTML.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"scirel.ai/deppath/types"
)

var patternHeader = []string{"rank", "score", "support", "doc_freq", "avg_association", "len", "path"}

// WriteCSV writes one row per ranked shape, best first.
func WriteCSV(w io.Writer, stats []types.PatternStat) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(patternHeader); err != nil {
		return err
	}
	for i, stat := range stats {
		row := []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.6f", stat.Score),
			strconv.Itoa(stat.Support),
			strconv.Itoa(stat.DocFreq),
			fmt.Sprintf("%.6f", stat.AvgAssociation),
			strconv.Itoa(stat.Len),
			stat.PathShape.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCoreCSV writes the core relation summary; examples share one
// column separated by "; ".
func WriteCoreCSV(w io.Writer, stats []types.CoreRelationStat) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"core_relation", "frequency", "examples"}); err != nil {
		return err
	}
	for _, stat := range stats {
		row := []string{stat.CoreRelation, strconv.Itoa(stat.Frequency), strings.Join(stat.Examples, "; ")}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSONL writes one JSON document per ranked shape, examples included.
func WriteJSONL(w io.Writer, stats []types.PatternStat) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, stat := range stats {
		if err := enc.Encode(stat); err != nil {
			return err
		}
	}
	return nil
}
