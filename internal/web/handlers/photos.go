package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/amora-app/backend/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PhotosHandler handles partner photo endpoints
type PhotosHandler struct {
	photos        database.PhotoWriter
	partners      database.PartnerReader
	extractor     DescriptorExtractor
	descriptorDim int
}

// NewPhotosHandler creates a new photos handler. A descriptorDim > 0 makes
// uploads reject descriptors of any other length.
func NewPhotosHandler(photos database.PhotoWriter, partners database.PartnerReader, extractor DescriptorExtractor, descriptorDim int) *PhotosHandler {
	return &PhotosHandler{
		photos:        photos,
		partners:      partners,
		extractor:     extractor,
		descriptorDim: descriptorDim,
	}
}

// PhotoResponse represents a stored photo in API responses
type PhotoResponse struct {
	ID            string `json:"id"`
	PartnerID     string `json:"partner_id"`
	HasDescriptor bool   `json:"has_descriptor"`
	Model         string `json:"model,omitempty"`
	FileKey       string `json:"file_key,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

func photoToResponse(p database.StoredPhoto) PhotoResponse {
	resp := PhotoResponse{
		ID:            p.ID,
		PartnerID:     p.PartnerID,
		HasDescriptor: len(p.Descriptor) > 0,
		Model:         p.Model,
		FileKey:       p.FileKey,
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// getPartnerOr404 loads the partner from the URL and writes a 404 if it does
// not exist. Returns nil after responding when the handler should stop.
func (h *PhotosHandler) getPartnerOr404(w http.ResponseWriter, r *http.Request) *database.Partner {
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

// ListPhotos returns all photos of a partner
func (h *PhotosHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	partner := h.getPartnerOr404(w, r)
	if partner == nil {
		return
	}

	photos, err := h.photos.GetPhotos(r.Context(), partner.ID)
	if err != nil {
		log.Printf("Failed to list photos for partner %s: %v", sanitizeForLog(partner.ID), err)
		respondError(w, http.StatusInternalServerError, "failed to list photos")
		return
	}

	response := make([]PhotoResponse, len(photos))
	for i := range photos {
		response[i] = photoToResponse(photos[i])
	}

	respondJSON(w, http.StatusOK, response)
}

// PhotoUploadRequest represents the request body for storing a photo.
// Either a precomputed descriptor or base64 image bytes must be present.
type PhotoUploadRequest struct {
	descriptorPayload
	FileKey string `json:"file_key,omitempty"`
}

// UploadPhoto stores a photo for a partner
func (h *PhotosHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	partner := h.getPartnerOr404(w, r)
	if partner == nil {
		return
	}

	var req PhotoUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	// A photo can be stored by file key alone; the backfill command computes
	// its descriptor later. Otherwise a descriptor or image is required.
	var descriptor []float32
	if len(req.Descriptor) > 0 || req.Image != "" {
		var status int
		var msg string
		descriptor, status, msg = resolveDescriptor(r.Context(), req.descriptorPayload, h.extractor, h.descriptorDim)
		if msg != "" {
			respondError(w, status, msg)
			return
		}
	} else if req.FileKey == "" {
		respondError(w, http.StatusBadRequest, "descriptor, image or file_key is required")
		return
	}

	photo := database.StoredPhoto{
		ID:         uuid.NewString(),
		PartnerID:  partner.ID,
		Descriptor: descriptor,
		FileKey:    req.FileKey,
	}
	if err := h.photos.SavePhoto(r.Context(), &photo); err != nil {
		log.Printf("Failed to save photo for partner %s: %v", sanitizeForLog(partner.ID), err)
		respondError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	respondJSON(w, http.StatusCreated, photoToResponse(photo))
}

// DeletePhoto removes a photo of a partner
func (h *PhotosHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	partner := h.getPartnerOr404(w, r)
	if partner == nil {
		return
	}

	photoID := chi.URLParam(r, "photoId")
	if photoID == "" {
		respondError(w, http.StatusBadRequest, "photoId is required")
		return
	}

	photo, err := h.photos.GetPhoto(r.Context(), photoID)
	if err != nil {
		log.Printf("Failed to get photo %s: %v", sanitizeForLog(photoID), err)
		respondError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if photo == nil || photo.PartnerID != partner.ID {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}

	if _, err := h.photos.DeletePhoto(r.Context(), photoID); err != nil {
		log.Printf("Failed to delete photo %s: %v", sanitizeForLog(photoID), err)
		respondError(w, http.StatusInternalServerError, "failed to delete photo")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
