package api

import (
	"log/slog"
	"net/http"

	"github.com/ahmadov/tabris-markdown/internal/config"
	"github.com/ahmadov/tabris-markdown/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API in front of the transducer.
type Server struct {
	router chi.Router
	stats  *stats.Window
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(log *slog.Logger, cfg config.Config, st *stats.Window) *Server {
	if st == nil {
		st = stats.NewWindow(cfg.StatsWindow)
	}
	s := &Server{
		stats: st,
		log:   log,
		cfg:   cfg,
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

		r.Post("/api/render", s.handleRender)
		r.Post("/api/events", s.handleEvents)
		r.Post("/api/tokens", s.handleTokens)
		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
