package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/amora-app/backend/internal/config"
	"github.com/amora-app/backend/internal/database"
	"github.com/amora-app/backend/internal/facematch"
	"github.com/amora-app/backend/internal/web/handlers"
	"github.com/amora-app/backend/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server

	partners  database.PartnerWriter
	photos    database.PhotoWriter
	extractor handlers.DescriptorExtractor
	matcher   *facematch.Matcher
}

// NewServer creates a new web server. The extractor may be nil when no face
// service is configured; image-based endpoints then respond with 503.
func NewServer(
	cfg *config.Config,
	port int,
	host string,
	partners database.PartnerWriter,
	photos database.PhotoWriter,
	extractor handlers.DescriptorExtractor,
) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:    cfg,
		router:    r,
		partners:  partners,
		photos:    photos,
		extractor: extractor,
		matcher:   facematch.NewMatcher(cfg.Matching.MinConfidence),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(time.Minute))
	r.Use(middleware.CORS())

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute, // Face service calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
