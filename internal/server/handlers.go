package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hyperjump/resumerank/internal/cli"
	"github.com/hyperjump/resumerank/internal/resume"
	"github.com/hyperjump/resumerank/internal/vector"
	"go.uber.org/zap"
)

type embeddingsRequest struct {
	Inputs []string `json:"inputs"`
	Cache  *bool    `json:"cache,omitempty"`
}

type embeddingsResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dimensions int         `json:"dimensions"`
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req embeddingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	useCache := true
	if req.Cache != nil {
		useCache = *req.Cache
	}
	s.logger.Debug("embeddings request", zap.Int("inputs", len(req.Inputs)), zap.Bool("cache", useCache))
	vecs, err := s.embedder.GetEmbeddings(r.Context(), req.Inputs, useCache)
	if err != nil {
		s.logger.Error("embedding failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := embeddingsResponse{Embeddings: vecs}
	if len(vecs) > 0 {
		resp.Dimensions = len(vecs[0])
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type searchRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
}

type searchResponse struct {
	Indices []int     `json:"indices"`
	Scores  []float64 `json:"scores"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("candidates", len(req.Candidates)))
	hits, err := s.engine.SearchTexts(r.Context(), req.Query, req.Candidates)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, errorStatus(err), err.Error())
		return
	}
	resp := searchResponse{Indices: make([]int, len(hits)), Scores: make([]float64, len(hits))}
	for i, h := range hits {
		resp.Indices[i] = h.Index
		resp.Scores[i] = h.Score
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type rankRequest struct {
	Query  string         `json:"query,omitempty"`
	Resume *resume.Resume `json:"resume,omitempty"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = s.config.Resume.Query
	}
	res := req.Resume
	if res == nil {
		res = s.currentResume()
	}
	if res == nil {
		s.respondError(w, http.StatusBadRequest, "no resume in request and none loaded")
		return
	}
	matches, err := s.matcher.RankWork(r.Context(), res, query)
	if err != nil {
		var le *resume.LimitError
		if errors.As(err, &le) {
			s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":      err.Error(),
				"violations": le.Violations,
			})
			return
		}
		s.logger.Error("rank failed", zap.Error(err))
		s.respondError(w, errorStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, cli.RankReport{Query: query, Matches: matches})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := cli.CollectStatus(r.Context(), s.config.Embedding.Provider, s.config.Cache.Backend, s.store, s.embedder)
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{"cache": st}
	if res := s.currentResume(); res != nil {
		resp["resume"] = map[string]interface{}{
			"path": s.config.Resume.Path,
			"work": len(res.Work),
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorStatus maps ranking input errors to 400 and everything else to 500.
func errorStatus(err error) int {
	if errors.Is(err, vector.ErrZeroVector) || errors.Is(err, vector.ErrDimensionMismatch) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
