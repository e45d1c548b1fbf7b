package types

import (
	"strings"

	"scirel.ai/deppath/utils"
)

const PathShapeSeparator = "->"

// PathShape is a normalized path: forms or relation labels, in path order.
type PathShape []string

func (shape PathShape) String() string {
	return strings.Join(shape, PathShapeSeparator)
}

func (shape PathShape) GetHashCode() uint64 {
	return utils.HashStrings(shape)
}

type PatternExample struct {
	Title         string   `json:"title"`
	Subject       string   `json:"subject"`
	Relation      string   `json:"relation,omitempty"`
	Object        string   `json:"object"`
	SentenceIndex *int     `json:"sentence_index"`
	PathType      PathType `json:"path_type"`
	PathString    string   `json:"path_str"`
}

type PatternStat struct {
	PathShape      PathShape        `json:"path_shape"`
	Support        int              `json:"support"`
	DocFreq        int              `json:"doc_freq"`
	AvgAssociation float64          `json:"avg_association"`
	Len            int              `json:"len"`
	Score          float64          `json:"score"`
	Examples       []PatternExample `json:"samples,omitempty"`
}

// CoreRelationStat counts one core relation, i.e. the root-labelled middle
// of a path between the subject chunk and the object chunk.
type CoreRelationStat struct {
	CoreRelation string   `json:"core_relation"`
	Frequency    int      `json:"frequency"`
	Examples     []string `json:"examples"`
}
