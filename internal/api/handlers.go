package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caselens/case-engine/internal/dataset"
	"github.com/caselens/case-engine/internal/storage"
)

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	records, err := s.repo.Load(r.Context(), storage.LoadFilters{})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load cases for query")
		s.writeError(w, http.StatusInternalServerError, "failed to load case data")
		return
	}

	answer := s.engine.Answer(r.Context(), req.Question, dataset.New(records))
	s.writeJSON(w, http.StatusOK, queryResponse{Question: req.Question, Answer: answer})
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	filters := storage.LoadFilters{
		Arbitrator:  r.URL.Query().Get("arbitrator"),
		Respondent:  r.URL.Query().Get("respondent"),
		Forum:       storage.Forum(r.URL.Query().Get("forum")),
		Disposition: r.URL.Query().Get("disposition"),
	}
	if v := r.URL.Query().Get("filed_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "filed_from must be YYYY-MM-DD")
			return
		}
		filters.FiledFrom = &t
	}
	if v := r.URL.Query().Get("filed_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "filed_to must be YYYY-MM-DD")
			return
		}
		filters.FiledTo = &t
	}

	records, err := s.repo.Load(r.Context(), filters)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load cases")
		s.writeError(w, http.StatusInternalServerError, "failed to load cases")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": len(records),
		"cases": records,
	})
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	rec, err := s.repo.GetByCaseID(r.Context(), caseID)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "case not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("case_id", caseID).Msg("failed to load case")
		s.writeError(w, http.StatusInternalServerError, "failed to load case")
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.Stats(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query stats")
		s.writeError(w, http.StatusInternalServerError, "failed to query stats")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	records, err := s.repo.Load(r.Context(), storage.LoadFilters{})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load cases for metrics")
		s.writeError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}

	ds := dataset.New(records)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics":         ds.ComputeMetrics(),
		"top_arbitrators": ds.TopArbitrators(10),
		"top_respondents": ds.TopRespondents(10),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
