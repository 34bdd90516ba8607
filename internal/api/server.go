package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/views"
)

// Server is the HTTP API server for docnav.
type Server struct {
	router chi.Router
	views  *views.Manager
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(mgr *views.Manager, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		views: mgr,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/views", s.handleOpenView)
		r.Get("/api/views", s.handleListViews)
		r.Route("/api/views/{viewID}", func(r chi.Router) {
			r.Get("/", s.handleGetView)
			r.Delete("/", s.handleCloseView)
			r.Get("/links", s.handleLinks)
			r.Post("/links/{index}/activate", s.handleActivateLink)
			r.Post("/navigate", s.handleNavigate)
			r.Get("/section", s.handleSection)
			r.Post("/scroll", s.handleScroll)
		})
		r.Get("/api/stats/navigation", s.handleNavigationStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
