// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/amora-app/backend/internal/database"
	"github.com/amora-app/backend/internal/facematch"
)

// MockPartnerReader is a mock implementation of database.PartnerReader
type MockPartnerReader struct {
	mu       sync.RWMutex
	partners map[string]*database.Partner

	// Error injection
	ListError      error
	GetError       error
	GetByNameError error
}

// NewMockPartnerReader creates a new mock partner reader
func NewMockPartnerReader() *MockPartnerReader {
	return &MockPartnerReader{
		partners: make(map[string]*database.Partner),
	}
}

// AddPartner adds a partner to the mock store
func (m *MockPartnerReader) AddPartner(partner database.Partner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partners[partner.ID] = &partner
}

// ListPartners returns all partners in the mock store
func (m *MockPartnerReader) ListPartners(ctx context.Context) ([]database.Partner, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []database.Partner
	for _, p := range m.partners {
		result = append(result, *p)
	}
	return result, nil
}

// GetPartner retrieves a partner by ID
func (m *MockPartnerReader) GetPartner(ctx context.Context, id string) (*database.Partner, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.partners[id], nil
}

// GetPartnerByName retrieves a partner by normalized name
func (m *MockPartnerReader) GetPartnerByName(ctx context.Context, name string) (*database.Partner, error) {
	if m.GetByNameError != nil {
		return nil, m.GetByNameError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	normalized := facematch.NormalizePartnerName(name)
	for _, p := range m.partners {
		if facematch.NormalizePartnerName(p.Name) == normalized {
			return p, nil
		}
	}
	return nil, nil
}

// MockPartnerWriter is a mock implementation of database.PartnerWriter
type MockPartnerWriter struct {
	*MockPartnerReader

	// Track calls
	CreateCalls        []database.Partner
	UpdateFlaggedCalls []UpdateFlaggedCall
	DeleteCalls        []string

	// Error injection
	CreateError        error
	UpdateFlaggedError error
	DeleteError        error

	counter int
}

// UpdateFlaggedCall tracks an UpdatePartnerFlagged call
type UpdateFlaggedCall struct {
	ID      string
	Flagged bool
}

// NewMockPartnerWriter creates a new mock partner writer
func NewMockPartnerWriter() *MockPartnerWriter {
	return &MockPartnerWriter{
		MockPartnerReader: NewMockPartnerReader(),
	}
}

// CreatePartner stores a new partner
func (m *MockPartnerWriter) CreatePartner(ctx context.Context, partner *database.Partner) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if partner.ID == "" {
		m.counter++
		partner.ID = fmt.Sprintf("partner-%d", m.counter)
	}
	m.CreateCalls = append(m.CreateCalls, *partner)
	m.partners[partner.ID] = partner
	return nil
}

// UpdatePartnerFlagged sets the flagged state of a partner
func (m *MockPartnerWriter) UpdatePartnerFlagged(ctx context.Context, id string, flagged bool) error {
	if m.UpdateFlaggedError != nil {
		return m.UpdateFlaggedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateFlaggedCalls = append(m.UpdateFlaggedCalls, UpdateFlaggedCall{ID: id, Flagged: flagged})
	if p, ok := m.partners[id]; ok {
		p.Flagged = flagged
	}
	return nil
}

// DeletePartner removes a partner
func (m *MockPartnerWriter) DeletePartner(ctx context.Context, id string) (bool, error) {
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	_, ok := m.partners[id]
	delete(m.partners, id)
	return ok, nil
}

// MockPhotoReader is a mock implementation of database.PhotoReader
type MockPhotoReader struct {
	mu     sync.RWMutex
	photos map[string]*database.StoredPhoto

	// Error injection
	GetPhotosError     error
	GetPhotoError      error
	GetExcludingError  error
	GetAllError        error
	GetWithoutDescErr  error
	CountPhotosError   error
}

// NewMockPhotoReader creates a new mock photo reader
func NewMockPhotoReader() *MockPhotoReader {
	return &MockPhotoReader{
		photos: make(map[string]*database.StoredPhoto),
	}
}

// AddPhoto adds a photo to the mock store
func (m *MockPhotoReader) AddPhoto(photo database.StoredPhoto) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos[photo.ID] = &photo
}

// GetPhotos retrieves all photos for a partner
func (m *MockPhotoReader) GetPhotos(ctx context.Context, partnerID string) ([]database.StoredPhoto, error) {
	if m.GetPhotosError != nil {
		return nil, m.GetPhotosError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []database.StoredPhoto
	for _, p := range m.photos {
		if p.PartnerID == partnerID {
			result = append(result, *p)
		}
	}
	return result, nil
}

// GetPhoto retrieves a photo by ID
func (m *MockPhotoReader) GetPhoto(ctx context.Context, photoID string) (*database.StoredPhoto, error) {
	if m.GetPhotoError != nil {
		return nil, m.GetPhotoError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.photos[photoID], nil
}

// GetPhotosExcludingPartner retrieves descriptor-bearing photos of other partners
func (m *MockPhotoReader) GetPhotosExcludingPartner(ctx context.Context, partnerID string, limit int) ([]database.StoredPhoto, error) {
	if m.GetExcludingError != nil {
		return nil, m.GetExcludingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []database.StoredPhoto
	for _, p := range m.photos {
		if p.PartnerID == partnerID || len(p.Descriptor) == 0 {
			continue
		}
		result = append(result, *p)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// GetAllPhotosWithDescriptor retrieves all descriptor-bearing photos
func (m *MockPhotoReader) GetAllPhotosWithDescriptor(ctx context.Context, limit int) ([]database.StoredPhoto, error) {
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []database.StoredPhoto
	for _, p := range m.photos {
		if len(p.Descriptor) == 0 {
			continue
		}
		result = append(result, *p)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// GetPhotosWithoutDescriptor retrieves photos still needing a descriptor
func (m *MockPhotoReader) GetPhotosWithoutDescriptor(ctx context.Context) ([]database.StoredPhoto, error) {
	if m.GetWithoutDescErr != nil {
		return nil, m.GetWithoutDescErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []database.StoredPhoto
	for _, p := range m.photos {
		if len(p.Descriptor) == 0 {
			result = append(result, *p)
		}
	}
	return result, nil
}

// CountPhotos returns the number of photos stored for a partner
func (m *MockPhotoReader) CountPhotos(ctx context.Context, partnerID string) (int, error) {
	if m.CountPhotosError != nil {
		return 0, m.CountPhotosError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, p := range m.photos {
		if p.PartnerID == partnerID {
			count++
		}
	}
	return count, nil
}

// MockPhotoWriter is a mock implementation of database.PhotoWriter
type MockPhotoWriter struct {
	*MockPhotoReader

	// Track calls
	SaveCalls             []database.StoredPhoto
	UpdateDescriptorCalls []UpdateDescriptorCall
	DeleteCalls           []string

	// Error injection
	SaveError             error
	UpdateDescriptorError error
	DeleteError           error

	counter int
}

// UpdateDescriptorCall tracks an UpdatePhotoDescriptor call
type UpdateDescriptorCall struct {
	PhotoID    string
	Descriptor []float32
	Model      string
	DetScore   float64
}

// NewMockPhotoWriter creates a new mock photo writer
func NewMockPhotoWriter() *MockPhotoWriter {
	return &MockPhotoWriter{
		MockPhotoReader: NewMockPhotoReader(),
	}
}

// SavePhoto stores a new photo
func (m *MockPhotoWriter) SavePhoto(ctx context.Context, photo *database.StoredPhoto) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if photo.ID == "" {
		m.counter++
		photo.ID = fmt.Sprintf("photo-%d", m.counter)
	}
	m.SaveCalls = append(m.SaveCalls, *photo)
	m.photos[photo.ID] = photo
	return nil
}

// UpdatePhotoDescriptor stores the descriptor for a photo
func (m *MockPhotoWriter) UpdatePhotoDescriptor(ctx context.Context, photoID string, descriptor []float32, model string, detScore float64) error {
	if m.UpdateDescriptorError != nil {
		return m.UpdateDescriptorError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateDescriptorCalls = append(m.UpdateDescriptorCalls, UpdateDescriptorCall{
		PhotoID:    photoID,
		Descriptor: descriptor,
		Model:      model,
		DetScore:   detScore,
	})
	if p, ok := m.photos[photoID]; ok {
		p.Descriptor = descriptor
		p.Model = model
		p.DetScore = detScore
	}
	return nil
}

// DeletePhoto removes a photo
func (m *MockPhotoWriter) DeletePhoto(ctx context.Context, photoID string) (bool, error) {
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, photoID)
	_, ok := m.photos[photoID]
	delete(m.photos, photoID)
	return ok, nil
}

// Verify interface compliance
var _ database.PartnerReader = (*MockPartnerReader)(nil)
var _ database.PartnerWriter = (*MockPartnerWriter)(nil)
var _ database.PhotoReader = (*MockPhotoReader)(nil)
var _ database.PhotoWriter = (*MockPhotoWriter)(nil)
