package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amora-app/backend/internal/database"
	"github.com/amora-app/backend/internal/facematch"
)

// PartnerRepository provides PostgreSQL-backed partner storage.
type PartnerRepository struct {
	pool *Pool
}

// NewPartnerRepository creates a new PostgreSQL partner repository.
func NewPartnerRepository(pool *Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

// ListPartners returns all partners with photo counts, ordered by creation time.
func (r *PartnerRepository) ListPartners(ctx context.Context) ([]database.Partner, error) {
	query := `
		SELECT p.id, p.name, p.picture_url, p.flagged, p.created_at, COUNT(ph.id)
		FROM partners p
		LEFT JOIN photos ph ON ph.partner_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query partners: %w", err)
	}
	defer rows.Close()

	var partners []database.Partner
	for rows.Next() {
		var p database.Partner
		var picture sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &picture, &p.Flagged, &p.CreatedAt, &p.PhotoCount); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		p.PictureURL = picture.String
		partners = append(partners, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partners: %w", err)
	}

	return partners, nil
}

// GetPartner retrieves a partner by ID. Returns nil if not found.
func (r *PartnerRepository) GetPartner(ctx context.Context, id string) (*database.Partner, error) {
	query := `
		SELECT id, name, picture_url, flagged, created_at
		FROM partners
		WHERE id = $1
	`

	var p database.Partner
	var picture sql.NullString
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &picture, &p.Flagged, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query partner: %w", err)
	}
	p.PictureURL = picture.String

	return &p, nil
}

// GetPartnerByName retrieves a partner by normalized name. Returns nil if not found.
// The PostgreSQL LOWER + unaccent + REPLACE expression matches the Go
// normalization in facematch.NormalizePartnerName.
func (r *PartnerRepository) GetPartnerByName(ctx context.Context, name string) (*database.Partner, error) {
	normalized := facematch.NormalizePartnerName(name)

	query := `
		SELECT id, name, picture_url, flagged, created_at
		FROM partners
		WHERE LOWER(REPLACE(unaccent(name), '-', ' ')) = $1
		ORDER BY created_at
		LIMIT 1
	`

	var p database.Partner
	var picture sql.NullString
	err := r.pool.QueryRow(ctx, query, normalized).Scan(&p.ID, &p.Name, &picture, &p.Flagged, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query partner by name: %w", err)
	}
	p.PictureURL = picture.String

	return &p, nil
}

// CreatePartner stores a new partner.
func (r *PartnerRepository) CreatePartner(ctx context.Context, partner *database.Partner) error {
	var picture sql.NullString
	if partner.PictureURL != "" {
		picture = sql.NullString{String: partner.PictureURL, Valid: true}
	}

	query := `
		INSERT INTO partners (id, name, picture_url, flagged)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, partner.ID, partner.Name, picture, partner.Flagged).Scan(&partner.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

// UpdatePartnerFlagged sets the flagged state of a partner.
func (r *PartnerRepository) UpdatePartnerFlagged(ctx context.Context, id string, flagged bool) error {
	if _, err := r.pool.Exec(ctx, "UPDATE partners SET flagged = $1 WHERE id = $2", flagged, id); err != nil {
		return fmt.Errorf("update partner flagged: %w", err)
	}
	return nil
}

// DeletePartner removes a partner and, via cascade, all its photos.
func (r *PartnerRepository) DeletePartner(ctx context.Context, id string) (bool, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM partners WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete partner: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete partner rows affected: %w", err)
	}
	return affected > 0, nil
}

// Verify interface compliance
var _ database.PartnerWriter = (*PartnerRepository)(nil)
