package web

import (
	"github.com/amora-app/backend/internal/web/handlers"
	"github.com/amora-app/backend/internal/web/middleware"
	"github.com/go-chi/chi/v5"
)

func (s *Server) setupRoutes() {
	// Create handlers
	partnersHandler := handlers.NewPartnersHandler(s.partners, s.photos)
	photosHandler := handlers.NewPhotosHandler(s.photos, s.partners, s.extractor, s.config.Matching.DescriptorDim)
	matchHandler := handlers.NewMatchHandler(s.matcher, s.partners, s.photos, s.extractor,
		s.config.Matching.CandidateLimit, s.config.Matching.DescriptorDim)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(s.config.Web.APIKey))

		// Partners
		r.Get("/partners", partnersHandler.ListPartners)
		r.Post("/partners", partnersHandler.CreatePartner)
		r.Get("/partners/{id}", partnersHandler.GetPartner)
		r.Put("/partners/{id}/flag", partnersHandler.FlagPartner)
		r.Delete("/partners/{id}", partnersHandler.DeletePartner)

		// Partner photos
		r.Get("/partners/{id}/photos", photosHandler.ListPhotos)
		r.Post("/partners/{id}/photos", photosHandler.UploadPhoto)
		r.Delete("/partners/{id}/photos/{photoId}", photosHandler.DeletePhoto)

		// Matching
		r.Post("/partners/{id}/photos/check", matchHandler.CheckUpload)
		r.Post("/photos/identify", matchHandler.Identify)
	})
}
