// Package api exposes extraction and ranking over HTTP.
package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"scirel.ai/deppath/pipeline"
	"scirel.ai/deppath/rank"
	"scirel.ai/deppath/types"
)

type Service struct {
	Pipeline pipeline.Pipeline
	Config   types.Configuration
}

func (service *Service) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", service.Extract)
	mux.HandleFunc("/rank", service.Rank)
	return mux
}

// Extract answers a pipeline.Request with the article result.
func (service *Service) Extract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "POST" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var request pipeline.Request
	if err := json.Unmarshal(msg, &request); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Request body is not a pipeline request")
		http.Error(w, "", http.StatusBadRequest)
		return
	}
	if request.Tid == "" {
		if request.Tid, err = gonanoid.New(); err != nil {
			logger.Err(err).Int("status", http.StatusInternalServerError).Msg("Could not generate tid")
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
	}

	logger.Info().Str("tid", request.Tid).Msg("Starting pipeline for request from API")
	resp, ok := <-service.Pipeline(request)
	if !ok {
		logger.Error().Str("tid", request.Tid).Int("status", http.StatusUnprocessableEntity).Msg("Pipeline returned no result")
		http.Error(w, "", http.StatusUnprocessableEntity)
		return
	}
	_, _ = w.Write([]byte(resp))
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

type rankRequest struct {
	Results []types.ArticleResult `json:"results"`
	Ranking json.RawMessage       `json:"ranking"`
	CoreTop int                   `json:"core_top"`
}

type rankResponse struct {
	Patterns      []types.PatternStat      `json:"patterns"`
	CoreRelations []types.CoreRelationStat `json:"core_relations"`
}

// Rank ranks the paths of the posted article results. Fields of "ranking"
// override the service configuration for this request only.
func (service *Service) Rank(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "POST" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var request rankRequest
	if err := json.Unmarshal(msg, &request); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Request body is not a rank request")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	cfg := service.Config
	cfg.Ranking.Synonyms = copySynonyms(service.Config.Ranking.Synonyms)
	cfg.Ranking.GenericWords = append([]string(nil), service.Config.Ranking.GenericWords...)
	if len(request.Ranking) > 0 {
		if err := json.Unmarshal(request.Ranking, &cfg.Ranking); err != nil {
			logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read ranking overrides")
			http.Error(w, "", http.StatusBadRequest)
			return
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Invalid ranking overrides")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	coreTop := request.CoreTop
	if coreTop <= 0 {
		coreTop = rank.DefaultCoreTopN
	}

	inputs := rank.Inputs(request.Results...)
	response := rankResponse{
		Patterns:      rank.Rank(inputs, cfg.Ranking),
		CoreRelations: rank.SummarizeCoreRelations(inputs, coreTop, rank.DefaultCoreExamples),
	}
	buf, err := json.Marshal(response)
	if err != nil {
		logger.Err(err).Int("status", http.StatusInternalServerError).Msg("Failed to marshall response")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(buf)
	logger.Info().
		Int("status", http.StatusOK).
		Int("records", len(inputs)).
		Int("patterns", len(response.Patterns)).
		Msg("Finished ranking request")
}

// copySynonyms returns a copy that request overrides may change.
func copySynonyms(synonyms map[string]string) map[string]string {
	c := make(map[string]string, len(synonyms))
	for k, v := range synonyms {
		c[k] = v
	}
	return c
}
