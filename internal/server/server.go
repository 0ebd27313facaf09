// Package server provides the HTTP API for resumerank.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/resumerank/internal/config"
	"github.com/hyperjump/resumerank/internal/embedding"
	"github.com/hyperjump/resumerank/internal/resume"
	"github.com/hyperjump/resumerank/internal/search"
	"github.com/hyperjump/resumerank/internal/storage"
	"go.uber.org/zap"
)

const requestTimeout = 60 * time.Second

// Server is the HTTP server for the resumerank API.
type Server struct {
	engine   *search.Engine
	matcher  *resume.Matcher
	embedder *embedding.CachedEmbedder
	store    storage.Store // nil when caching is disabled
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server

	mu     sync.RWMutex
	resume *resume.Resume
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	matcher *resume.Matcher,
	embedder *embedding.CachedEmbedder,
	store storage.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:   engine,
		matcher:  matcher,
		embedder: embedder,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

// SetResume replaces the resume served by /api/v1/rank when a request carries none.
func (s *Server) SetResume(r *resume.Resume) {
	s.mu.Lock()
	s.resume = r
	s.mu.Unlock()
}

func (s *Server) currentResume() *resume.Resume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resume
}

// ReloadResume loads the resume from path, embeds its work entries to warm the
// cache, and makes it the current resume. On error the previous resume is kept.
func (s *Server) ReloadResume(ctx context.Context, path string) error {
	r, err := resume.Load(path)
	if err != nil {
		return err
	}
	if _, err := s.matcher.EmbedWork(ctx, r); err != nil {
		return err
	}
	s.SetResume(r)
	s.logger.Info("resume loaded", zap.String("path", path), zap.Int("work", len(r.Work)))
	return nil
}

// Router returns the API handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/embeddings", s.handleEmbeddings)
		r.Post("/search", s.handleSearch)
		r.Post("/rank", s.handleRank)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
