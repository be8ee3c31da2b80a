package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/amora-app/backend/internal/faceapi"
	"github.com/amora-app/backend/internal/facematch"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// DescriptorExtractor extracts a face descriptor from image bytes.
// Implemented by faceapi.Client; handler tests provide their own.
type DescriptorExtractor interface {
	ExtractDescriptor(ctx context.Context, image []byte) (*faceapi.Descriptor, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// descriptorPayload is the shared request shape for endpoints that accept
// either a precomputed descriptor or raw image bytes.
type descriptorPayload struct {
	Descriptor []float32 `json:"descriptor,omitempty"`
	Image      string    `json:"image,omitempty"` // base64-encoded image bytes
}

// resolveDescriptor returns the face descriptor for a request, calling the
// face service when only an image was provided. The second return value is
// an error message suitable for the client, empty on success.
//
// When descriptorDim > 0, descriptors of any other length are rejected here
// instead of being silently unmatchable against every stored candidate.
func resolveDescriptor(ctx context.Context, payload descriptorPayload, extractor DescriptorExtractor, descriptorDim int) (facematch.FaceDescriptor, int, string) {
	if len(payload.Descriptor) > 0 {
		if descriptorDim > 0 && len(payload.Descriptor) != descriptorDim {
			return nil, http.StatusBadRequest, fmt.Sprintf("descriptor must have %d values", descriptorDim)
		}
		return payload.Descriptor, 0, ""
	}

	if payload.Image == "" {
		return nil, http.StatusBadRequest, "descriptor or image is required"
	}
	if extractor == nil {
		return nil, http.StatusServiceUnavailable, "face service not configured"
	}

	image, err := base64.StdEncoding.DecodeString(payload.Image)
	if err != nil {
		return nil, http.StatusBadRequest, "image is not valid base64"
	}

	descriptor, err := extractor.ExtractDescriptor(ctx, image)
	switch {
	case errors.Is(err, faceapi.ErrNoFace):
		return nil, http.StatusUnprocessableEntity, "no face detected"
	case errors.Is(err, faceapi.ErrMultipleFaces):
		return nil, http.StatusUnprocessableEntity, "multiple faces detected"
	case errors.Is(err, faceapi.ErrLowConfidence):
		return nil, http.StatusUnprocessableEntity, "face detection confidence too low"
	case err != nil:
		return nil, http.StatusBadGateway, "face service request failed"
	}

	if descriptorDim > 0 && len(descriptor.Values) != descriptorDim {
		return nil, http.StatusBadGateway, "face service returned a descriptor of unexpected length"
	}

	return descriptor.Values, 0, ""
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
