package types

type ArticleStats struct {
	TotalPairs             int `json:"total_pairs"`
	AlignedPairs           int `json:"aligned_pairs"`
	PathFound              int `json:"path_found"`
	CrossSentencePairs     int `json:"cross_sentence_pairs"`
	CrossSentencePathFound int `json:"cross_sentence_path_found"`
}

// Add accumulates other into stats; used for corpus totals.
func (stats *ArticleStats) Add(other ArticleStats) {
	stats.TotalPairs += other.TotalPairs
	stats.AlignedPairs += other.AlignedPairs
	stats.PathFound += other.PathFound
	stats.CrossSentencePairs += other.CrossSentencePairs
	stats.CrossSentencePathFound += other.CrossSentencePathFound
}

type ResultConfig struct {
	EnableCrossSentence   bool    `json:"enable_cross_sentence"`
	CrossSentenceStrategy *string `json:"cross_sentence_strategy"`
}

type ArticleResult struct {
	Title  string       `json:"title"`
	Stats  ArticleStats `json:"stats"`
	Pairs  []PathRecord `json:"pairs"`
	Config ResultConfig `json:"config"`
}
