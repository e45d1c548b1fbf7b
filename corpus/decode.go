// Package corpus reads parser output and entity pair files and writes
// extraction results.
package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
	"github.com/kaptinlin/jsonrepair"

	"scirel.ai/deppath/logger"
	"scirel.ai/deppath/types"
)

var (
	ErrMalformedInput = errors.New("malformed input")
	ErrMissingPairs   = errors.New("no entity pair file")
)

// Event names logged when an article cannot be read.
const (
	EventMissingPairs = "MISS_PAIRS_FILE"
	EventMalformed    = "MALFORMED_INPUT"
)

// EventOf returns the log event name of an article level failure.
func EventOf(err error) string {
	if errors.Is(err, ErrMissingPairs) {
		return EventMissingPairs
	}
	return EventMalformed
}

var corpusLogger = logger.NewLogger("Corpus")

var validate = validator.New()

type rawToken struct {
	ID     *int    `json:"id" validate:"required,gte=1"`
	Form   *string `json:"form" validate:"required"`
	Head   *int    `json:"head" validate:"required,gte=0"`
	Deprel string  `json:"deprel"`
	Pos    string  `json:"pos"`
}

type rawSentence struct {
	Sentence string     `json:"sentence"`
	Tokens   []string   `json:"tokens"`
	Parsed   []rawToken `json:"parsed" validate:"dive"`
}

type rawArticle struct {
	Title             string        `json:"title"`
	Summary           string        `json:"summary"`
	AnalyzedSentences []rawSentence `json:"analyzed_sentences" validate:"required,dive"`
}

// DecodeArticle parses one parser output document. Every token must carry
// an id >= 1, a form and a head >= 0.
func DecodeArticle(data []byte) (types.ParsedArticle, error) {
	var raw rawArticle
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.ParsedArticle{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if err := validate.Struct(raw); err != nil {
		return types.ParsedArticle{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	article := types.ParsedArticle{
		Title:     raw.Title,
		Summary:   raw.Summary,
		Sentences: make([]types.Sentence, len(raw.AnalyzedSentences)),
	}
	for i, rs := range raw.AnalyzedSentences {
		sent := types.Sentence{Index: i, Text: rs.Sentence, Tokens: make([]types.Token, len(rs.Parsed))}
		for j, rt := range rs.Parsed {
			sent.Tokens[j] = types.Token{
				ID:     *rt.ID,
				Form:   *rt.Form,
				Head:   *rt.Head,
				Deprel: rt.Deprel,
				Pos:    rt.Pos,
			}
		}
		article.Sentences[i] = sent
	}
	return article, nil
}

type rawPair struct {
	Subject     string `json:"subject" validate:"required"`
	Object      string `json:"object" validate:"required"`
	Relation    string `json:"relation"`
	SubjectType string `json:"subject_type"`
	ObjectType  string `json:"object_type"`
}

var pairListKeys = []string{"pairs", "relations", "entity_pairs"}

// DecodePairs parses an entity pair file: a JSON array of pairs or an
// object holding the array under one of pairListKeys. Pair files are
// usually written by a language model, so invalid JSON is repaired once
// before giving up. Pairs without subject or object are dropped.
func DecodePairs(data []byte) ([]types.EntityPairRequest, error) {
	doc, err := repairedJSON(data)
	if err != nil {
		return nil, err
	}

	list := doc
	if bytes.HasPrefix(doc, []byte("{")) {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(doc, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		list = nil
		for _, key := range pairListKeys {
			if v, ok := wrapper[key]; ok {
				list = v
				break
			}
		}
		if list == nil {
			return nil, fmt.Errorf("%w: no pair list under %v", ErrMalformedInput, pairListKeys)
		}
	}

	var raw []rawPair
	if err := json.Unmarshal(list, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	pairs := make([]types.EntityPairRequest, 0, len(raw))
	for i, rp := range raw {
		rp.Subject = strings.TrimSpace(rp.Subject)
		rp.Object = strings.TrimSpace(rp.Object)
		if err := validate.Struct(rp); err != nil {
			corpusLogger.Warn().Err(err).Int("pair", i).Msg("Dropping invalid entity pair")
			continue
		}
		pairs = append(pairs, types.EntityPairRequest{
			Subject:     rp.Subject,
			Object:      rp.Object,
			Relation:    rp.Relation,
			SubjectType: rp.SubjectType,
			ObjectType:  rp.ObjectType,
		})
	}
	return pairs, nil
}

func repairedJSON(data []byte) ([]byte, error) {
	doc := bytes.TrimSpace(data)
	if json.Valid(doc) {
		return doc, nil
	}
	repaired, err := jsonrepair.JSONRepair(string(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: json repair failed: %v", ErrMalformedInput, err)
	}
	corpusLogger.Debug().Msg("Repaired malformed pair file")
	return bytes.TrimSpace([]byte(repaired)), nil
}

// DecodeResult parses a result file written by WriteResult. Older files
// keep the records under "results" or "items", or are a bare array; the
// title then comes from fallbackTitle.
func DecodeResult(data []byte, fallbackTitle string) (types.ArticleResult, error) {
	doc := bytes.TrimSpace(data)
	var result types.ArticleResult
	if bytes.HasPrefix(doc, []byte("[")) {
		if err := json.Unmarshal(doc, &result.Pairs); err != nil {
			return result, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
	} else {
		if err := json.Unmarshal(doc, &result); err != nil {
			return result, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if result.Pairs == nil {
			var legacy struct {
				Results []types.PathRecord `json:"results"`
				Items   []types.PathRecord `json:"items"`
			}
			if err := json.Unmarshal(doc, &legacy); err != nil {
				return result, fmt.Errorf("%w: %v", ErrMalformedInput, err)
			}
			result.Pairs = legacy.Results
			if result.Pairs == nil {
				result.Pairs = legacy.Items
			}
		}
	}
	if result.Title == "" {
		result.Title = fallbackTitle
	}
	return result, nil
}
