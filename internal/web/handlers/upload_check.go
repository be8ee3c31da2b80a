package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/amora-app/backend/internal/database"
	"github.com/amora-app/backend/internal/facematch"
	"github.com/go-chi/chi/v5"
)

// MatchHandler handles the upload check and identify endpoints
type MatchHandler struct {
	matcher        *facematch.Matcher
	partners       database.PartnerReader
	photos         database.PhotoReader
	extractor      DescriptorExtractor
	candidateLimit int
	descriptorDim  int
}

// NewMatchHandler creates a new match handler. A descriptorDim > 0 makes
// both endpoints reject query descriptors of any other length.
func NewMatchHandler(
	matcher *facematch.Matcher,
	partners database.PartnerReader,
	photos database.PhotoReader,
	extractor DescriptorExtractor,
	candidateLimit int,
	descriptorDim int,
) *MatchHandler {
	if candidateLimit <= 0 {
		candidateLimit = database.DefaultCandidateLimit
	}
	return &MatchHandler{
		matcher:        matcher,
		partners:       partners,
		photos:         photos,
		extractor:      extractor,
		candidateLimit: candidateLimit,
		descriptorDim:  descriptorDim,
	}
}

// UploadCheckResponse is the result of checking a photo before upload.
// SkippedCandidates counts stored descriptors whose length did not match
// the query and were therefore excluded from the comparison.
type UploadCheckResponse struct {
	Decision          facematch.UploadDecision `json:"decision"`
	SkippedCandidates int                      `json:"skipped_candidates"`
}

// CheckUpload checks a photo against a partner's stored photos and the
// photos of all other partners, and returns the upload decision
func (h *MatchHandler) CheckUpload(w http.ResponseWriter, r *http.Request) {
	partner := h.getPartnerOr404(w, r)
	if partner == nil {
		return
	}

	var payload descriptorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	query, status, msg := resolveDescriptor(r.Context(), payload, h.extractor, h.descriptorDim)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	ownPhotos, err := h.photos.GetPhotos(r.Context(), partner.ID)
	if err != nil {
		log.Printf("Failed to load photos for partner %s: %v", sanitizeForLog(partner.ID), err)
		respondError(w, http.StatusInternalServerError, "failed to load partner photos")
		return
	}

	otherPhotos, err := h.photos.GetPhotosExcludingPartner(r.Context(), partner.ID, h.candidateLimit)
	if err != nil {
		log.Printf("Failed to load candidate photos: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load candidate photos")
		return
	}

	partnerMatches, skippedOwn, err := h.matcher.FindMatches(query, database.PhotoRecords(ownPhotos))
	if err != nil {
		h.respondMatchError(w, err)
		return
	}

	otherRecords := database.PhotoRecords(otherPhotos)
	otherMatches, skippedOthers, err := h.matcher.FindMatches(query, otherRecords)
	if err != nil {
		h.respondMatchError(w, err)
		return
	}

	skipped := skippedOwn + skippedOthers
	if skipped > 0 {
		log.Printf("Skipped %d candidate descriptors with mismatched length for partner %s",
			skipped, sanitizeForLog(partner.ID))
	}

	decision := facematch.Decide(
		partnerMatches,
		facematch.EnrichMatches(otherMatches, otherRecords),
		countWithDescriptor(ownPhotos) > 0,
		len(otherPhotos) > 0,
	)

	respondJSON(w, http.StatusOK, UploadCheckResponse{
		Decision:          decision,
		SkippedCandidates: skipped,
	})
}

// Identify checks a photo against every stored partner photo without a
// chosen partner, supporting the "who is this" flow
func (h *MatchHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var payload descriptorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	query, status, msg := resolveDescriptor(r.Context(), payload, h.extractor, h.descriptorDim)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	photos, err := h.photos.GetAllPhotosWithDescriptor(r.Context(), h.candidateLimit)
	if err != nil {
		log.Printf("Failed to load candidate photos: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load candidate photos")
		return
	}

	records := database.PhotoRecords(photos)
	matches, skipped, err := h.matcher.FindMatches(query, records)
	if err != nil {
		h.respondMatchError(w, err)
		return
	}
	if skipped > 0 {
		log.Printf("Skipped %d candidate descriptors with mismatched length", skipped)
	}

	decision := facematch.DecideUnassigned(facematch.EnrichMatches(matches, records))

	respondJSON(w, http.StatusOK, UploadCheckResponse{
		Decision:          decision,
		SkippedCandidates: skipped,
	})
}

// getPartnerOr404 loads the partner from the URL, writing a 404 when missing
func (h *MatchHandler) getPartnerOr404(w http.ResponseWriter, r *http.Request) *database.Partner {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return nil
	}

	partner, err := h.partners.GetPartner(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get partner %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get partner")
		return nil
	}
	if partner == nil {
		respondError(w, http.StatusNotFound, "partner not found")
		return nil
	}
	return partner
}

func (h *MatchHandler) respondMatchError(w http.ResponseWriter, err error) {
	if errors.Is(err, facematch.ErrEmptyDescriptor) {
		respondError(w, http.StatusBadRequest, "descriptor must not be empty")
		return
	}
	log.Printf("Matching failed: %v", err)
	respondError(w, http.StatusInternalServerError, "matching failed")
}

func countWithDescriptor(photos []database.StoredPhoto) int {
	count := 0
	for _, p := range photos {
		if len(p.Descriptor) > 0 {
			count++
		}
	}
	return count
}
