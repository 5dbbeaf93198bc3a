// Package server provides the browser UI and JSON API for testgen.
package server

import (
	"context"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/testgen/internal/config"
	"github.com/hyperjump/testgen/internal/generator"
	"github.com/hyperjump/testgen/internal/session"
)

// WatchService reports the inbox directories watched alongside the server.
type WatchService interface {
	Directories() []string
}

// Server is the HTTP server for the test case generator.
type Server struct {
	gen      *generator.Generator
	sessions *session.Store
	config   *config.ServerConfig
	watch    WatchService
	logger   *zap.Logger
	page     *template.Template
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithWatch exposes the directories of a running watcher on the API.
func WithWatch(w WatchService) Option {
	return func(s *Server) {
		s.watch = w
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(
	gen *generator.Generator,
	sessions *session.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		gen:      gen,
		sessions: sessions,
		config:   cfg,
		logger:   logger,
		page:     pageTemplate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleIndex)
		r.Post("/upload", s.handleUploadForm)
		r.Post("/generate", s.handleGenerateForm)
		r.Get("/export/csv", s.handleExportCSV)
		r.Get("/export/xlsx", s.handleExportXLSX)

		r.Post("/api/v1/upload", s.handleUploadAPI)
		r.Post("/api/v1/generate", s.handleGenerateAPI)
		r.Get("/api/v1/test-cases", s.handleTestCasesAPI)
	})

	r.Get("/api/v1/watch/directories", s.handleWatchDirectoriesList)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
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
