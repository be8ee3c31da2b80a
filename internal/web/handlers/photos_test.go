package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amora-app/backend/internal/database"
	"github.com/amora-app/backend/internal/database/mock"
	"github.com/amora-app/backend/internal/faceapi"
)

// stubExtractor is a DescriptorExtractor with canned results
type stubExtractor struct {
	descriptor *faceapi.Descriptor
	err        error
	calls      int
}

func (s *stubExtractor) ExtractDescriptor(ctx context.Context, image []byte) (*faceapi.Descriptor, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.descriptor, nil
}

func newPhotosFixture() (*mock.MockPartnerWriter, *mock.MockPhotoWriter) {
	partners := mock.NewMockPartnerWriter()
	partners.AddPartner(database.Partner{ID: "p1", Name: "Ana"})
	photos := mock.NewMockPhotoWriter()
	return partners, photos
}

func newTestPhotosHandler(photos *mock.MockPhotoWriter, partners *mock.MockPartnerWriter, extractor DescriptorExtractor) *PhotosHandler {
	return NewPhotosHandler(photos, partners, extractor, testConfig().Matching.DescriptorDim)
}

func TestListPhotos(t *testing.T) {
	partners, photos := newPhotosFixture()
	photos.AddPhoto(database.StoredPhoto{ID: "ph1", PartnerID: "p1", Descriptor: []float32{0.1, 0.2}})
	photos.AddPhoto(database.StoredPhoto{ID: "ph2", PartnerID: "p1"})
	photos.AddPhoto(database.StoredPhoto{ID: "ph3", PartnerID: "other"})

	handler := newTestPhotosHandler(photos, partners, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/p1/photos", nil)
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.ListPhotos(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response []PhotoResponse
	parseJSONResponse(t, recorder, &response)
	if len(response) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(response))
	}
	for _, p := range response {
		if p.ID == "ph1" && !p.HasDescriptor {
			t.Error("expected ph1 to have a descriptor")
		}
		if p.ID == "ph2" && p.HasDescriptor {
			t.Error("expected ph2 to have no descriptor")
		}
	}
}

func TestListPhotosPartnerNotFound(t *testing.T) {
	partners, photos := newPhotosFixture()
	handler := newTestPhotosHandler(photos, partners, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/missing/photos", nil)
	req = requestWithChiParams(req, map[string]string{"id": "missing"})
	recorder := httptest.NewRecorder()
	handler.ListPhotos(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "partner not found")
}

func TestUploadPhotoWithDescriptor(t *testing.T) {
	partners, photos := newPhotosFixture()
	handler := newTestPhotosHandler(photos, partners, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/partners/p1/photos", PhotoUploadRequest{
		descriptorPayload: descriptorPayload{Descriptor: []float32{0.1, 0.2}},
		FileKey:           "uploads/ana-1.jpg",
	})
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.UploadPhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var photo PhotoResponse
	parseJSONResponse(t, recorder, &photo)
	if !photo.HasDescriptor {
		t.Error("expected stored photo to have a descriptor")
	}
	if photo.PartnerID != "p1" {
		t.Errorf("expected partner 'p1', got '%s'", photo.PartnerID)
	}
	if len(photos.SaveCalls) != 1 {
		t.Fatalf("expected 1 save call, got %d", len(photos.SaveCalls))
	}
	if photos.SaveCalls[0].FileKey != "uploads/ana-1.jpg" {
		t.Errorf("unexpected file key '%s'", photos.SaveCalls[0].FileKey)
	}
}

func TestUploadPhotoWithImage(t *testing.T) {
	partners, photos := newPhotosFixture()
	extractor := &stubExtractor{
		descriptor: &faceapi.Descriptor{Values: []float32{0.5, 0.5}, DetScore: 0.95, Model: "arcface"},
	}
	handler := newTestPhotosHandler(photos, partners, extractor)

	req := jsonRequest(t, http.MethodPost, "/api/v1/partners/p1/photos", PhotoUploadRequest{
		descriptorPayload: descriptorPayload{Image: base64.StdEncoding.EncodeToString([]byte("image-bytes"))},
	})
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.UploadPhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)
	if extractor.calls != 1 {
		t.Errorf("expected 1 extractor call, got %d", extractor.calls)
	}
	if len(photos.SaveCalls) != 1 || len(photos.SaveCalls[0].Descriptor) != 2 {
		t.Error("expected saved photo with extracted descriptor")
	}
}

func TestUploadPhotoFileKeyOnly(t *testing.T) {
	partners, photos := newPhotosFixture()
	handler := newTestPhotosHandler(photos, partners, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/partners/p1/photos", PhotoUploadRequest{
		FileKey: "uploads/pending.jpg",
	})
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.UploadPhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var photo PhotoResponse
	parseJSONResponse(t, recorder, &photo)
	if photo.HasDescriptor {
		t.Error("expected photo stored without descriptor")
	}
}

func TestUploadPhotoWrongDescriptorLength(t *testing.T) {
	partners, photos := newPhotosFixture()
	handler := newTestPhotosHandler(photos, partners, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/partners/p1/photos", PhotoUploadRequest{
		descriptorPayload: descriptorPayload{Descriptor: []float32{0.1, 0.2, 0.3}},
	})
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.UploadPhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "descriptor must have 2 values")
	if len(photos.SaveCalls) != 0 {
		t.Errorf("expected no save calls, got %d", len(photos.SaveCalls))
	}
}

func TestUploadPhotoEmptyBody(t *testing.T) {
	partners, photos := newPhotosFixture()
	handler := newTestPhotosHandler(photos, partners, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/partners/p1/photos", PhotoUploadRequest{})
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.UploadPhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "descriptor, image or file_key is required")
}

func TestUploadPhotoNoFaceDetected(t *testing.T) {
	partners, photos := newPhotosFixture()
	extractor := &stubExtractor{err: faceapi.ErrNoFace}
	handler := newTestPhotosHandler(photos, partners, extractor)

	req := jsonRequest(t, http.MethodPost, "/api/v1/partners/p1/photos", PhotoUploadRequest{
		descriptorPayload: descriptorPayload{Image: base64.StdEncoding.EncodeToString([]byte("image-bytes"))},
	})
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.UploadPhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
	assertJSONError(t, recorder, "no face detected")
}

func TestUploadPhotoFaceServiceUnavailable(t *testing.T) {
	partners, photos := newPhotosFixture()
	handler := newTestPhotosHandler(photos, partners, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/partners/p1/photos", PhotoUploadRequest{
		descriptorPayload: descriptorPayload{Image: base64.StdEncoding.EncodeToString([]byte("image-bytes"))},
	})
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.UploadPhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
	assertJSONError(t, recorder, "face service not configured")
}

func TestUploadPhotoStoreError(t *testing.T) {
	partners, photos := newPhotosFixture()
	photos.SaveError = errors.New("disk full")
	handler := newTestPhotosHandler(photos, partners, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/partners/p1/photos", PhotoUploadRequest{
		descriptorPayload: descriptorPayload{Descriptor: []float32{0.1, 0.2}},
	})
	req = requestWithChiParams(req, map[string]string{"id": "p1"})
	recorder := httptest.NewRecorder()
	handler.UploadPhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to save photo")
}

func TestDeletePhoto(t *testing.T) {
	partners, photos := newPhotosFixture()
	photos.AddPhoto(database.StoredPhoto{ID: "ph1", PartnerID: "p1"})

	handler := newTestPhotosHandler(photos, partners, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/partners/p1/photos/ph1", nil)
	req = requestWithChiParams(req, map[string]string{"id": "p1", "photoId": "ph1"})
	recorder := httptest.NewRecorder()
	handler.DeletePhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if len(photos.DeleteCalls) != 1 {
		t.Errorf("expected 1 delete call, got %d", len(photos.DeleteCalls))
	}
}

func TestDeletePhotoWrongPartner(t *testing.T) {
	partners, photos := newPhotosFixture()
	photos.AddPhoto(database.StoredPhoto{ID: "ph1", PartnerID: "other"})

	handler := newTestPhotosHandler(photos, partners, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/partners/p1/photos/ph1", nil)
	req = requestWithChiParams(req, map[string]string{"id": "p1", "photoId": "ph1"})
	recorder := httptest.NewRecorder()
	handler.DeletePhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "photo not found")
}

func TestDeletePhotoMissing(t *testing.T) {
	partners, photos := newPhotosFixture()
	handler := newTestPhotosHandler(photos, partners, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/partners/p1/photos/missing", nil)
	req = requestWithChiParams(req, map[string]string{"id": "p1", "photoId": "missing"})
	recorder := httptest.NewRecorder()
	handler.DeletePhoto(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}
