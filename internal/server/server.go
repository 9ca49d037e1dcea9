// Package server provides the HTTP similarity API over a trained model.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	sgns "github.com/n0madic/go-sgns"
	"github.com/n0madic/go-sgns/internal/config"
	"github.com/n0madic/go-sgns/internal/store"
)

// Server is the HTTP server for the similarity API.
type Server struct {
	model    *sgns.Model
	store    store.Store
	defaultK int
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server answering queries against model. st may be nil,
// in which case the model listing endpoint reports 501.
func NewServer(
	model *sgns.Model,
	st store.Store,
	cfg *config.ServerConfig,
	defaultK int,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		model:    model,
		store:    st,
		defaultK: defaultK,
		logger:   logger,
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.Routes(),
	}
	return s
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/similarity", s.handleSimilarity)
		r.Get("/neighbors/{word}", s.handleNeighbors)
		r.Get("/models", s.handleModels)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
