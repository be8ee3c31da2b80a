package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amora-app/backend/internal/faceapi"
)

func TestRespondJSON(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondJSON(recorder, http.StatusCreated, map[string]string{"status": "ok"})

	assertStatusCode(t, recorder, http.StatusCreated)
	assertContentType(t, recorder, "application/json")

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", result["status"])
	}
}

func TestRespondJSONNilData(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondJSON(recorder, http.StatusOK, nil)

	assertStatusCode(t, recorder, http.StatusOK)
	if recorder.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got '%s'", recorder.Body.String())
	}
}

func TestRespondError(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondError(recorder, http.StatusBadRequest, "something went wrong")

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertContentType(t, recorder, "application/json")
	assertJSONError(t, recorder, "something went wrong")
}

func TestSanitizeForLog(t *testing.T) {
	got := sanitizeForLog("line1\nline2\rline3")
	if got != "line1line2line3" {
		t.Errorf("expected newlines stripped, got '%s'", got)
	}
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	HealthCheck(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", result["status"])
	}
}

func TestResolveDescriptorPrefersDescriptor(t *testing.T) {
	extractor := &stubExtractor{err: faceapi.ErrNoFace}

	descriptor, _, msg := resolveDescriptor(context.Background(), descriptorPayload{
		Descriptor: []float32{0.1, 0.2},
		Image:      base64.StdEncoding.EncodeToString([]byte("image")),
	}, extractor, 2)

	if msg != "" {
		t.Fatalf("unexpected error message '%s'", msg)
	}
	if len(descriptor) != 2 {
		t.Errorf("expected 2 descriptor values, got %d", len(descriptor))
	}
	if extractor.calls != 0 {
		t.Error("extractor must not be called when a descriptor is provided")
	}
}

func TestResolveDescriptorRequiresInput(t *testing.T) {
	_, status, msg := resolveDescriptor(context.Background(), descriptorPayload{}, nil, 0)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
	if msg != "descriptor or image is required" {
		t.Errorf("unexpected message '%s'", msg)
	}
}

func TestResolveDescriptorInvalidBase64(t *testing.T) {
	extractor := &stubExtractor{}
	_, status, msg := resolveDescriptor(context.Background(), descriptorPayload{Image: "not-base64!"}, extractor, 0)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
	if msg != "image is not valid base64" {
		t.Errorf("unexpected message '%s'", msg)
	}
}

func TestResolveDescriptorExtractedWrongLength(t *testing.T) {
	extractor := &stubExtractor{
		descriptor: &faceapi.Descriptor{Values: []float32{0.1, 0.2, 0.3}},
	}

	image := base64.StdEncoding.EncodeToString([]byte("image"))
	_, status, msg := resolveDescriptor(context.Background(), descriptorPayload{Image: image}, extractor, 2)
	if status != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", status)
	}
	if msg != "face service returned a descriptor of unexpected length" {
		t.Errorf("unexpected message '%s'", msg)
	}
}

func TestResolveDescriptorFaceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"no face", faceapi.ErrNoFace, http.StatusUnprocessableEntity, "no face detected"},
		{"multiple faces", faceapi.ErrMultipleFaces, http.StatusUnprocessableEntity, "multiple faces detected"},
		{"low confidence", faceapi.ErrLowConfidence, http.StatusUnprocessableEntity, "face detection confidence too low"},
	}

	image := base64.StdEncoding.EncodeToString([]byte("image"))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			extractor := &stubExtractor{err: tc.err}
			_, status, msg := resolveDescriptor(context.Background(), descriptorPayload{Image: image}, extractor, 0)
			if status != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, status)
			}
			if msg != tc.wantMsg {
				t.Errorf("expected '%s', got '%s'", tc.wantMsg, msg)
			}
		})
	}
}
