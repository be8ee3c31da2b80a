package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/amora-app/backend/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PartnersHandler handles partner CRUD endpoints
type PartnersHandler struct {
	partners database.PartnerWriter
	photos   database.PhotoReader
}

// NewPartnersHandler creates a new partners handler
func NewPartnersHandler(partners database.PartnerWriter, photos database.PhotoReader) *PartnersHandler {
	return &PartnersHandler{partners: partners, photos: photos}
}

// PartnerResponse represents a partner in API responses
type PartnerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PictureURL string `json:"picture_url,omitempty"`
	Flagged    bool   `json:"flagged"`
	PhotoCount int    `json:"photo_count"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func partnerToResponse(p database.Partner) PartnerResponse {
	resp := PartnerResponse{
		ID:         p.ID,
		Name:       p.Name,
		PictureURL: p.PictureURL,
		Flagged:    p.Flagged,
		PhotoCount: p.PhotoCount,
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// ListPartners returns all partners
func (h *PartnersHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.partners.ListPartners(r.Context())
	if err != nil {
		log.Printf("Failed to list partners: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list partners")
		return
	}

	response := make([]PartnerResponse, len(partners))
	for i := range partners {
		response[i] = partnerToResponse(partners[i])
	}

	respondJSON(w, http.StatusOK, response)
}

// PartnerCreateRequest represents the request body for creating a partner
type PartnerCreateRequest struct {
	Name       string `json:"name"`
	PictureURL string `json:"picture_url,omitempty"`
}

// CreatePartner creates a new partner
func (h *PartnersHandler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var req PartnerCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	// Name lookup is normalized, so "Ana-María" and "ana maria" count as
	// the same partner.
	existing, err := h.partners.GetPartnerByName(r.Context(), req.Name)
	if err != nil {
		log.Printf("Failed to look up partner %s: %v", sanitizeForLog(req.Name), err)
		respondError(w, http.StatusInternalServerError, "failed to create partner")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "partner with this name already exists")
		return
	}

	partner := database.Partner{
		ID:         uuid.NewString(),
		Name:       req.Name,
		PictureURL: req.PictureURL,
	}
	if err := h.partners.CreatePartner(r.Context(), &partner); err != nil {
		log.Printf("Failed to create partner %s: %v", sanitizeForLog(req.Name), err)
		respondError(w, http.StatusInternalServerError, "failed to create partner")
		return
	}

	respondJSON(w, http.StatusCreated, partnerToResponse(partner))
}

// GetPartner returns a single partner by ID
func (h *PartnersHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	partner, err := h.partners.GetPartner(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get partner %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get partner")
		return
	}
	if partner == nil {
		respondError(w, http.StatusNotFound, "partner not found")
		return
	}

	// The list endpoint joins counts in SQL; single-partner reads count here.
	count, err := h.photos.CountPhotos(r.Context(), id)
	if err != nil {
		log.Printf("Failed to count photos for partner %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get partner")
		return
	}
	partner.PhotoCount = count

	respondJSON(w, http.StatusOK, partnerToResponse(*partner))
}

// PartnerFlagRequest represents the request body for flagging a partner
type PartnerFlagRequest struct {
	Flagged bool `json:"flagged"`
}

// FlagPartner sets the flagged state of a partner
func (h *PartnersHandler) FlagPartner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req PartnerFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	partner, err := h.partners.GetPartner(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get partner %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get partner")
		return
	}
	if partner == nil {
		respondError(w, http.StatusNotFound, "partner not found")
		return
	}

	if err := h.partners.UpdatePartnerFlagged(r.Context(), id, req.Flagged); err != nil {
		log.Printf("Failed to flag partner %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to update partner")
		return
	}

	partner.Flagged = req.Flagged
	respondJSON(w, http.StatusOK, partnerToResponse(*partner))
}

// DeletePartner removes a partner and all of its photos
func (h *PartnersHandler) DeletePartner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	deleted, err := h.partners.DeletePartner(r.Context(), id)
	if err != nil {
		log.Printf("Failed to delete partner %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to delete partner")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "partner not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
