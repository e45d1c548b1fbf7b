package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type PathType string

const (
	PathTypeIntraSentence PathType = "intra_sentence"
	PathTypeCrossSentence PathType = "cross_sentence"
	PathTypeNone          PathType = "none"
)

func (pathType *PathType) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*pathType = PathTypeNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch PathType(s) {
	case PathTypeIntraSentence, PathTypeCrossSentence:
		*pathType = PathType(s)
	default:
		*pathType = PathTypeNone
	}
	return nil
}

// PathStep is serialized as a two element array [form, deprel].
type PathStep struct {
	Form   string
	Deprel string
}

func (step PathStep) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{step.Form, step.Deprel})
}

// UnmarshalJSON accepts [form, deprel], [form] and {"form":..., "deprel":...}.
func (step *PathStep) UnmarshalJSON(data []byte) error {
	var pair []*string
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) == 0 {
			return fmt.Errorf("empty path step")
		}
		if pair[0] != nil {
			step.Form = *pair[0]
		}
		if len(pair) > 1 && pair[1] != nil {
			step.Deprel = *pair[1]
		}
		return nil
	}
	var obj struct {
		Form   string `json:"form"`
		Deprel string `json:"deprel"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("path step must be an array or an object: %w", err)
	}
	step.Form, step.Deprel = obj.Form, obj.Deprel
	return nil
}

type PathPosition struct {
	SentenceIndex int `json:"sentence_index"`
	ID            int `json:"id"`
}

func (position PathPosition) Key() NodeKey {
	return NodeKey{Sentence: position.SentenceIndex, Token: position.ID}
}

// PathRecord is the extraction result for one entity pair of one article.
type PathRecord struct {
	Subject         string         `json:"subject"`
	Object          string         `json:"object"`
	Relation        string         `json:"relation,omitempty"`
	SubjectType     string         `json:"subject_type,omitempty"`
	ObjectType      string         `json:"object_type,omitempty"`
	Path            []PathStep     `json:"path"`
	PathType        PathType       `json:"path_type"`
	SentenceIndex   *int           `json:"sentence_index"`
	SentenceIndexes []int          `json:"sentence_indexes,omitempty"`
	PathPositions   []PathPosition `json:"path_positions"`
	Note            string         `json:"note,omitempty"`
}

func (record PathRecord) HasPath() bool {
	return len(record.Path) > 0
}

// PathString renders the path the way reports print it: form(deprel) joined by " — ".
func (record PathRecord) PathString() string {
	parts := make([]string, len(record.Path))
	for i, step := range record.Path {
		parts[i] = fmt.Sprintf("%s(%s)", step.Form, step.Deprel)
	}
	return strings.Join(parts, " — ")
}
