// Package api exposes the case engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/caselens/case-engine/internal/observability"
	"github.com/caselens/case-engine/internal/query"
	"github.com/caselens/case-engine/internal/storage"
)

// Server wires the HTTP handlers to their dependencies.
type Server struct {
	repo   *storage.CaseRepository
	engine *query.Engine
	logger *observability.Logger
}

// NewServer creates an API server.
func NewServer(repo *storage.CaseRepository, engine *query.Engine, logger *observability.Logger) *Server {
	return &Server{repo: repo, engine: engine, logger: logger.WithComponent("api")}
}

// Router builds the HTTP router with all routes configured.
func (s *Server) Router(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"case-engine"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/cases", s.handleListCases)
		r.Get("/cases/{caseID}", s.handleGetCase)
		r.Get("/stats", s.handleStats)
		r.Get("/metrics", s.handleMetrics)
	})

	return r
}
