package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/lintdoc/internal/config"
	"github.com/dgallion1/lintdoc/internal/lint"
)

// Server is the HTTP API for lintdoc.
type Server struct {
	router chi.Router
	linter *lint.Linter
	log    *slog.Logger
	cfg    config.Server
}

// NewServer creates and configures the HTTP server.
func NewServer(linter *lint.Linter, log *slog.Logger, cfg config.Server) *Server {
	s := &Server{
		linter: linter,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/lint", s.handleLint)
		r.Post("/api/lint/batch", s.handleBatchLint)
		r.Get("/api/rules", s.handleRules)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
