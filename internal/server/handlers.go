package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	sgns "github.com/n0madic/go-sgns"
)

type similarityRequest struct {
	Word1 string `json:"word_1"`
	Word2 string `json:"word_2"`
}

type similarityResponse struct {
	Word1      string  `json:"word_1"`
	Word2      string  `json:"word_2"`
	Similarity float64 `json:"similarity"`
}

type neighbor struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

type neighborsResponse struct {
	Word      string     `json:"word"`
	Neighbors []neighbor `json:"neighbors"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"words":  s.model.Vocab().Len(),
		"dim":    s.model.Dim(),
	})
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Word1 = strings.ToLower(strings.TrimSpace(req.Word1))
	req.Word2 = strings.ToLower(strings.TrimSpace(req.Word2))
	if req.Word1 == "" || req.Word2 == "" {
		s.respondError(w, http.StatusBadRequest, "word_1 and word_2 are required")
		return
	}

	s.logger.Debug("similarity request", zap.String("word_1", req.Word1), zap.String("word_2", req.Word2))
	sim, err := s.model.WordsSimilarity(req.Word1, req.Word2)
	if err != nil {
		s.respondModelError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, similarityResponse{Word1: req.Word1, Word2: req.Word2, Similarity: sim})
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	word := strings.ToLower(chi.URLParam(r, "word"))

	k := s.defaultK
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = n
	}

	s.logger.Debug("neighbors request", zap.String("word", word), zap.Int("k", k))
	words, scores, err := s.model.FindKMostSimilar(word, k)
	if err != nil {
		s.respondModelError(w, err)
		return
	}

	resp := neighborsResponse{Word: word, Neighbors: make([]neighbor, 0, len(words))}
	for _, nw := range words {
		resp.Neighbors = append(resp.Neighbors, neighbor{Word: nw, Similarity: scores[nw]})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "model store not configured")
		return
	}
	entries, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list models failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"models": entries})
}

func (s *Server) respondModelError(w http.ResponseWriter, err error) {
	if errors.Is(err, sgns.ErrDivisionByZero) {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Error("query failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
