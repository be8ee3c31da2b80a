package database

import (
	"context"
	"fmt"
)

var (
	postgresPartnerReader func() PartnerReader
	postgresPartnerWriter func() PartnerWriter
	postgresPhotoReader   func() PhotoReader
	postgresPhotoWriter   func() PhotoWriter
	postgresInitialized   bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(
	partnerWriter func() PartnerWriter,
	photoWriter func() PhotoWriter,
) {
	postgresPartnerWriter = partnerWriter
	postgresPhotoWriter = photoWriter
	if partnerWriter != nil {
		postgresPartnerReader = func() PartnerReader { return partnerWriter() }
	}
	if photoWriter != nil {
		postgresPhotoReader = func() PhotoReader { return photoWriter() }
	}
	postgresInitialized = true
}

// IsInitialized returns whether the PostgreSQL backend has been initialized.
func IsInitialized() bool {
	return postgresInitialized
}

// GetPartnerReader returns a PartnerReader from the PostgreSQL backend
func GetPartnerReader(ctx context.Context) (PartnerReader, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresPartnerReader == nil {
		return nil, fmt.Errorf("PostgreSQL partner reader not registered")
	}
	return postgresPartnerReader(), nil
}

// GetPartnerWriter returns a PartnerWriter from the PostgreSQL backend
func GetPartnerWriter(ctx context.Context) (PartnerWriter, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresPartnerWriter == nil {
		return nil, fmt.Errorf("PostgreSQL partner writer not registered")
	}
	return postgresPartnerWriter(), nil
}

// GetPhotoReader returns a PhotoReader from the PostgreSQL backend
func GetPhotoReader(ctx context.Context) (PhotoReader, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresPhotoReader == nil {
		return nil, fmt.Errorf("PostgreSQL photo reader not registered")
	}
	return postgresPhotoReader(), nil
}

// GetPhotoWriter returns a PhotoWriter from the PostgreSQL backend
func GetPhotoWriter(ctx context.Context) (PhotoWriter, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresPhotoWriter == nil {
		return nil, fmt.Errorf("PostgreSQL photo writer not registered")
	}
	return postgresPhotoWriter(), nil
}
