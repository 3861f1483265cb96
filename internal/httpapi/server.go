package httpapi

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MimeLyc/transcript-panel/internal/hotspot"
	"github.com/MimeLyc/transcript-panel/internal/library"
	"github.com/MimeLyc/transcript-panel/internal/transcript"
)

type Server struct {
	scanner  *library.Scanner
	hotspots *hotspot.Overlay
	sessions *sessionStore

	corsOrigins    []string
	streamDebounce time.Duration
	language       string
	controllerOpts []transcript.Option
	rescanCron     string

	uiEnabled   bool
	uiStaticDir string

	router *chi.Mux
	server *http.Server
}

type Option func(*Server)

func WithUI(staticDir string, enabled bool) Option {
	return func(s *Server) {
		s.uiStaticDir = staticDir
		s.uiEnabled = enabled
	}
}

// WithHotspots serves the overlay under /api/hotspots and gives every
// session a fork of it.
func WithHotspots(overlay *hotspot.Overlay) Option {
	return func(s *Server) {
		s.hotspots = overlay
	}
}

func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithStreamDebounce sets the quiet period before a stream pushes the
// latest highlight.
func WithStreamDebounce(d time.Duration) Option {
	return func(s *Server) {
		s.streamDebounce = d
	}
}

// WithDefaultLanguage sets the track language used when a session does not
// ask for one.
func WithDefaultLanguage(lang string) Option {
	return func(s *Server) {
		s.language = lang
	}
}

// WithRescanSchedule reports the library rescan schedule on /api/health.
func WithRescanSchedule(expr string) Option {
	return func(s *Server) {
		s.rescanCron = expr
	}
}

func WithControllerOptions(opts ...transcript.Option) Option {
	return func(s *Server) {
		s.controllerOpts = append(s.controllerOpts, opts...)
	}
}

func NewServer(scanner *library.Scanner, opts ...Option) *Server {
	s := &Server{
		scanner:        scanner,
		sessions:       newSessionStore(),
		streamDebounce: 150 * time.Millisecond,
		router:         chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown stops the HTTP server and closes every session stream.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.closeAll()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	r := s.router
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(cors.Handler(corsOptions(s.corsOrigins)))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/media", s.handleListMedia)
		r.Get("/media/{id}", s.handleGetMedia)
		r.Post("/scan", s.handleScan)
		r.Get("/hotspots", s.handleHotspots)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/time", s.handleTime)
			r.Put("/track", s.handleTrack)
			r.Get("/captions", s.handleCaptions)
			r.Get("/hotspots", s.handleSessionHotspots)
			r.Post("/search", s.handleSearch)
			r.Post("/search/next", s.handleSearchStep)
			r.Post("/search/prev", s.handleSearchStep)
			r.Get("/stream", s.handleStream)
		})
	})

	r.NotFound(s.handleStatic)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if !s.uiEnabled || s.uiStaticDir == "" || strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	indexPath := filepath.Join(s.uiStaticDir, "index.html")

	if rel == "" || !strings.Contains(filepath.Base(rel), ".") {
		http.ServeFile(w, r, indexPath)
		return
	}

	filePath := filepath.Join(s.uiStaticDir, rel)
	if _, err := os.Stat(filePath); err != nil {
		// unknown asset paths fall back to the SPA entry point
		http.ServeFile(w, r, indexPath)
		return
	}
	http.ServeFile(w, r, filePath)
}
