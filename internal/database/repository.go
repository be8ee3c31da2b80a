package database

import (
	"context"
)

// PartnerReader provides read-only access to partner records
type PartnerReader interface {
	// ListPartners returns all partners with photo counts, ordered by creation time
	ListPartners(ctx context.Context) ([]Partner, error)
	// GetPartner retrieves a partner by ID, returns nil if not found
	GetPartner(ctx context.Context, id string) (*Partner, error)
	// GetPartnerByName retrieves a partner by normalized name, returns nil if not found.
	// Names are normalized before comparison (lowercase, no diacritics, dashes to spaces)
	// so "Ana-María" and "ana maria" resolve to the same partner.
	GetPartnerByName(ctx context.Context, name string) (*Partner, error)
}

// PartnerWriter provides write access to partner records
type PartnerWriter interface {
	PartnerReader

	// CreatePartner stores a new partner. The ID must be set by the caller.
	CreatePartner(ctx context.Context, partner *Partner) error

	// UpdatePartnerFlagged sets the flagged state of a partner
	UpdatePartnerFlagged(ctx context.Context, id string, flagged bool) error

	// DeletePartner removes a partner and all its photos.
	// Returns true if a partner was deleted.
	DeletePartner(ctx context.Context, id string) (bool, error)
}

// PhotoReader provides read-only access to partner photos
type PhotoReader interface {
	// GetPhotos retrieves all photos for a partner
	GetPhotos(ctx context.Context, partnerID string) ([]StoredPhoto, error)
	// GetPhoto retrieves a photo by ID, returns nil if not found
	GetPhoto(ctx context.Context, photoID string) (*StoredPhoto, error)
	// GetPhotosExcludingPartner retrieves photos of all partners except the given one,
	// with partner display data joined in. Only photos with a descriptor are returned.
	GetPhotosExcludingPartner(ctx context.Context, partnerID string, limit int) ([]StoredPhoto, error)
	// GetAllPhotosWithDescriptor retrieves photos of all partners that have a descriptor,
	// with partner display data joined in
	GetAllPhotosWithDescriptor(ctx context.Context, limit int) ([]StoredPhoto, error)
	// GetPhotosWithoutDescriptor retrieves photos that still need a descriptor
	GetPhotosWithoutDescriptor(ctx context.Context) ([]StoredPhoto, error)
	// CountPhotos returns the number of photos stored for a partner
	CountPhotos(ctx context.Context, partnerID string) (int, error)
}

// PhotoWriter provides write access to partner photos
type PhotoWriter interface {
	PhotoReader

	// SavePhoto stores a new photo. The ID must be set by the caller.
	SavePhoto(ctx context.Context, photo *StoredPhoto) error

	// UpdatePhotoDescriptor stores the descriptor produced by the face service
	UpdatePhotoDescriptor(ctx context.Context, photoID string, descriptor []float32, model string, detScore float64) error

	// DeletePhoto removes a photo. Returns true if a photo was deleted.
	DeletePhoto(ctx context.Context, photoID string) (bool, error)
}
