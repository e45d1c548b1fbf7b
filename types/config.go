package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"scirel.ai/deppath/utils"
)

const (
	AlignStrategyWindow   = "window"
	AlignStrategyCoverage = "coverage"

	CrossStrategySuperRoot = "super_root"

	RepresentationForm   = "form"
	RepresentationDeprel = "deprel"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type AlignmentConfig struct {
	Strategy     string   `yaml:"strategy" json:"strategy"`
	F1Threshold  float64  `yaml:"f1_threshold" json:"f1_threshold"`
	IgnoredForms []string `yaml:"ignored_forms" json:"ignored_forms"`
}

type ExtractionConfig struct {
	EnableCrossSentence   bool            `yaml:"enable_cross_sentence" json:"enable_cross_sentence"`
	CrossSentenceStrategy string          `yaml:"cross_sentence_strategy" json:"cross_sentence_strategy"`
	Alignment             AlignmentConfig `yaml:"alignment" json:"alignment"`
}

type RankingConfig struct {
	Representation       string            `yaml:"representation" json:"representation"`
	MinSupport           int               `yaml:"min_support" json:"min_support"`
	MinDocFreq           int               `yaml:"min_doc_freq" json:"min_doc_freq"`
	MinLen               int               `yaml:"min_len" json:"min_len"`
	MaxLen               int               `yaml:"max_len" json:"max_len"`
	TopK                 int               `yaml:"top_k" json:"top_k"`
	MaxExamples          int               `yaml:"max_examples" json:"max_examples"`
	IncludeCrossSentence bool              `yaml:"include_cross_sentence" json:"include_cross_sentence"`
	ShortPathLength      int               `yaml:"short_path_length" json:"short_path_length"`
	ShortPathPenalty     float64           `yaml:"short_path_penalty" json:"short_path_penalty"`
	GenericRatio         float64           `yaml:"generic_ratio" json:"generic_ratio"`
	GenericPenalty       float64           `yaml:"generic_penalty" json:"generic_penalty"`
	Synonyms             map[string]string `yaml:"synonyms" json:"synonyms"`
	SynonymsFile         string            `yaml:"synonyms_file" json:"synonyms_file"`
	GenericWords         []string          `yaml:"generic_words" json:"generic_words"`
	GenericWordsFile     string            `yaml:"generic_words_file" json:"generic_words_file"`
}

type Configuration struct {
	Name       string           `yaml:"name" json:"name"`
	FilePath   string           `yaml:"-" json:"file_path"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Ranking    RankingConfig    `yaml:"ranking" json:"ranking"`
}

// DefaultIgnoredForms are functional particles and list separators that may
// be skipped while matching a mention against a token window.
var DefaultIgnoredForms = []string{"的", "地", "得", "之", "和", "与", "及", "等", "、"}

var DefaultSynonyms = map[string]string{
	"方案": "方法", "手段": "方法", "途径": "方法", "策略": "方法", "流程": "方法",
	"处理": "解决", "应对": "解决", "化解": "解决", "攻克": "解决", "解决方案": "解决",
	"难题": "问题", "故障": "问题", "矛盾": "问题", "挑战": "问题", "痛点": "问题",
}

var DefaultGenericWords = []string{
	"是", "有", "进行", "方面", "各种", "对于", "一种", "通过", "针对", "采用",
	"提出", "研究", "分析", "实现", "建立", "开展", "设计", "提供", "应用",
}

func DefaultConfiguration() Configuration {
	synonyms := make(map[string]string, len(DefaultSynonyms))
	for k, v := range DefaultSynonyms {
		synonyms[k] = v
	}
	return Configuration{
		Name: "default",
		Extraction: ExtractionConfig{
			EnableCrossSentence:   true,
			CrossSentenceStrategy: CrossStrategySuperRoot,
			Alignment: AlignmentConfig{
				Strategy:     AlignStrategyWindow,
				F1Threshold:  0.5,
				IgnoredForms: append([]string(nil), DefaultIgnoredForms...),
			},
		},
		Ranking: RankingConfig{
			Representation:       RepresentationForm,
			MinSupport:           3,
			MinDocFreq:           2,
			MinLen:               2,
			MaxLen:               6,
			TopK:                 200,
			MaxExamples:          5,
			IncludeCrossSentence: true,
			ShortPathLength:      3,
			ShortPathPenalty:     0.85,
			GenericRatio:         0.5,
			GenericPenalty:       0.85,
			Synonyms:             synonyms,
			GenericWords:         append([]string(nil), DefaultGenericWords...),
		},
	}
}

// LoadConfiguration reads a yaml file on top of DefaultConfiguration. Lexicon
// files are resolved relative to the configuration file.
func LoadConfiguration(filePath string) (Configuration, error) {
	cfg := DefaultConfiguration()
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filePath, err)
	}
	cfg.FilePath = filePath
	if err := cfg.loadLexicons(filepath.Dir(filePath)); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg *Configuration) loadLexicons(baseDir string) error {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	if cfg.Ranking.SynonymsFile != "" {
		synonyms, err := utils.ReadMap(resolve(cfg.Ranking.SynonymsFile))
		if err != nil {
			return fmt.Errorf("read synonyms file: %w", err)
		}
		if cfg.Ranking.Synonyms == nil {
			cfg.Ranking.Synonyms = make(map[string]string, len(synonyms))
		}
		for k, v := range synonyms {
			cfg.Ranking.Synonyms[k] = v
		}
	}
	if cfg.Ranking.GenericWordsFile != "" {
		words, err := utils.ReadList(resolve(cfg.Ranking.GenericWordsFile))
		if err != nil {
			return fmt.Errorf("read generic words file: %w", err)
		}
		cfg.Ranking.GenericWords = append(cfg.Ranking.GenericWords, words...)
	}
	return nil
}

func (cfg Configuration) Validate() error {
	ext := cfg.Extraction
	switch ext.Alignment.Strategy {
	case AlignStrategyWindow, AlignStrategyCoverage:
	default:
		return fmt.Errorf("%w: unknown alignment strategy %q", ErrInvalidConfig, ext.Alignment.Strategy)
	}
	if ext.Alignment.F1Threshold < 0 || ext.Alignment.F1Threshold >= 1 {
		return fmt.Errorf("%w: f1_threshold must be in [0, 1)", ErrInvalidConfig)
	}
	if ext.EnableCrossSentence && ext.CrossSentenceStrategy != CrossStrategySuperRoot {
		return fmt.Errorf("%w: unknown cross sentence strategy %q", ErrInvalidConfig, ext.CrossSentenceStrategy)
	}

	rank := cfg.Ranking
	switch rank.Representation {
	case RepresentationForm, RepresentationDeprel:
	default:
		return fmt.Errorf("%w: unknown representation %q", ErrInvalidConfig, rank.Representation)
	}
	if rank.MinLen < 1 || rank.MaxLen < rank.MinLen {
		return fmt.Errorf("%w: need 1 <= min_len <= max_len, got %d and %d", ErrInvalidConfig, rank.MinLen, rank.MaxLen)
	}
	if rank.MinSupport < 0 || rank.MinDocFreq < 0 || rank.TopK < 0 || rank.MaxExamples < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalidConfig)
	}
	for name, v := range map[string]float64{
		"short_path_penalty": rank.ShortPathPenalty,
		"generic_penalty":    rank.GenericPenalty,
		"generic_ratio":      rank.GenericRatio,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in (0, 1], got %v", ErrInvalidConfig, name, v)
		}
	}
	return nil
}
