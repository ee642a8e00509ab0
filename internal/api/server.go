// Package api exposes the analysis engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/lexmetrica/juris-analyzer/internal/analysis"
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// ContradictionDetector runs one contradiction analysis batch.
type ContradictionDetector interface {
	DetectContradictions(ctx context.Context, req analysis.DetectRequest) (*models.ContradictionReport, error)
}

// ThemeMonitor runs one theme monitoring batch.
type ThemeMonitor interface {
	MonitorTheme(ctx context.Context, req analysis.MonitorRequest) (*models.MonitoringReport, error)
}

// CaseSearcher exposes corpus search to the API.
type CaseSearcher interface {
	Search(ctx context.Context, query string, maxResults int, bodyCodes []string) ([]models.Case, error)
	ListBodies(ctx context.Context) ([]models.IssuingBody, error)
}

// CorpusStats reports corpus-level counters.
type CorpusStats interface {
	Count(ctx context.Context) (int, error)
}

type Server struct {
	router   *chi.Mux
	detector ContradictionDetector
	monitor  ThemeMonitor
	searcher CaseSearcher
	stats    CorpusStats
	logger   *zap.Logger
}

// NewServer creates the HTTP server. A nil logger disables logging; a nil
// stats source disables the corpus counter in /stats.
func NewServer(detector ContradictionDetector, monitor ThemeMonitor, searcher CaseSearcher, stats CorpusStats, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:   r,
		detector: detector,
		monitor:  monitor,
		searcher: searcher,
		stats:    stats,
		logger:   logger,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/bodies", s.handleListBodies)
		r.Get("/cases/search", s.handleSearchCases)
		r.Post("/contradictions/detect", s.handleDetectContradictions)
		r.Post("/trends/monitor", s.handleMonitorTheme)
	})
}

func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
