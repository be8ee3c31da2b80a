package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amora-app/backend/internal/database"
	"github.com/pgvector/pgvector-go"
)

// PhotoRepository provides PostgreSQL-backed photo storage with pgvector
// descriptor columns.
type PhotoRepository struct {
	pool *Pool
}

// NewPhotoRepository creates a new PostgreSQL photo repository.
func NewPhotoRepository(pool *Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

// photoColumns is the shared SELECT list for photo queries joined with partners.
const photoColumns = `
	ph.id, ph.partner_id, ph.descriptor, ph.model, ph.det_score, ph.file_key, ph.created_at,
	p.name, p.picture_url, p.flagged
`

// scanPhotos reads joined photo rows into StoredPhoto values.
func scanPhotos(rows *sql.Rows) ([]database.StoredPhoto, error) {
	var photos []database.StoredPhoto
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}

	return photos, nil
}

// scanPhoto reads a single joined photo row.
func scanPhoto(rows *sql.Rows) (database.StoredPhoto, error) {
	var photo database.StoredPhoto
	var descriptor sql.Null[pgvector.Vector]
	var model, fileKey, partnerPicture sql.NullString
	var detScore sql.NullFloat64

	err := rows.Scan(
		&photo.ID, &photo.PartnerID, &descriptor, &model, &detScore, &fileKey, &photo.CreatedAt,
		&photo.PartnerName, &partnerPicture, &photo.PartnerFlagged,
	)
	if err != nil {
		return database.StoredPhoto{}, fmt.Errorf("scan photo: %w", err)
	}

	if descriptor.Valid {
		photo.Descriptor = descriptor.V.Slice()
	}
	photo.Model = model.String
	photo.DetScore = detScore.Float64
	photo.FileKey = fileKey.String

	return photo, nil
}

// GetPhotos retrieves all photos for a partner, including those without a
// descriptor, ordered by creation time.
func (r *PhotoRepository) GetPhotos(ctx context.Context, partnerID string) ([]database.StoredPhoto, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos ph
		JOIN partners p ON p.id = ph.partner_id
		WHERE ph.partner_id = $1
		ORDER BY ph.created_at
	`

	rows, err := r.pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// GetPhoto retrieves a photo by ID. Returns nil if not found.
func (r *PhotoRepository) GetPhoto(ctx context.Context, photoID string) (*database.StoredPhoto, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos ph
		JOIN partners p ON p.id = ph.partner_id
		WHERE ph.id = $1
	`

	rows, err := r.pool.Query(ctx, query, photoID)
	if err != nil {
		return nil, fmt.Errorf("query photo: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate photo: %w", err)
		}
		return nil, nil
	}

	photo, err := scanPhoto(rows)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// GetPhotosExcludingPartner retrieves descriptor-bearing photos of all
// partners except the given one, ordered by creation time.
func (r *PhotoRepository) GetPhotosExcludingPartner(ctx context.Context, partnerID string, limit int) ([]database.StoredPhoto, error) {
	if limit <= 0 {
		limit = database.DefaultCandidateLimit
	}

	query := `
		SELECT ` + photoColumns + `
		FROM photos ph
		JOIN partners p ON p.id = ph.partner_id
		WHERE ph.partner_id != $1 AND ph.descriptor IS NOT NULL
		ORDER BY ph.created_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, partnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query photos excluding partner: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// GetAllPhotosWithDescriptor retrieves all descriptor-bearing photos.
func (r *PhotoRepository) GetAllPhotosWithDescriptor(ctx context.Context, limit int) ([]database.StoredPhoto, error) {
	if limit <= 0 {
		limit = database.DefaultCandidateLimit
	}

	query := `
		SELECT ` + photoColumns + `
		FROM photos ph
		JOIN partners p ON p.id = ph.partner_id
		WHERE ph.descriptor IS NOT NULL
		ORDER BY ph.created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query photos with descriptor: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// GetPhotosWithoutDescriptor retrieves photos that still need a descriptor.
func (r *PhotoRepository) GetPhotosWithoutDescriptor(ctx context.Context) ([]database.StoredPhoto, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos ph
		JOIN partners p ON p.id = ph.partner_id
		WHERE ph.descriptor IS NULL
		ORDER BY ph.created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query photos without descriptor: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// CountPhotos returns the number of photos stored for a partner.
func (r *PhotoRepository) CountPhotos(ctx context.Context, partnerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM photos WHERE partner_id = $1", partnerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return count, nil
}

// SavePhoto stores a new photo.
func (r *PhotoRepository) SavePhoto(ctx context.Context, photo *database.StoredPhoto) error {
	var descriptor sql.Null[pgvector.Vector]
	if len(photo.Descriptor) > 0 {
		descriptor = sql.Null[pgvector.Vector]{V: pgvector.NewVector(photo.Descriptor), Valid: true}
	}

	var model, fileKey sql.NullString
	if photo.Model != "" {
		model = sql.NullString{String: photo.Model, Valid: true}
	}
	if photo.FileKey != "" {
		fileKey = sql.NullString{String: photo.FileKey, Valid: true}
	}

	var detScore sql.NullFloat64
	if photo.DetScore > 0 {
		detScore = sql.NullFloat64{Float64: photo.DetScore, Valid: true}
	}

	query := `
		INSERT INTO photos (id, partner_id, descriptor, model, det_score, file_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, photo.ID, photo.PartnerID, descriptor, model, detScore, fileKey).Scan(&photo.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

// UpdatePhotoDescriptor stores the descriptor produced by the face service.
func (r *PhotoRepository) UpdatePhotoDescriptor(ctx context.Context, photoID string, descriptor []float32, model string, detScore float64) error {
	if len(descriptor) == 0 {
		return errors.New("descriptor must not be empty")
	}

	query := `
		UPDATE photos SET
			descriptor = $1,
			model = $2,
			det_score = $3
		WHERE id = $4
	`

	vec := pgvector.NewVector(descriptor)
	if _, err := r.pool.Exec(ctx, query, vec, model, detScore, photoID); err != nil {
		return fmt.Errorf("update photo descriptor: %w", err)
	}
	return nil
}

// DeletePhoto removes a photo.
func (r *PhotoRepository) DeletePhoto(ctx context.Context, photoID string) (bool, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM photos WHERE id = $1", photoID)
	if err != nil {
		return false, fmt.Errorf("delete photo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete photo rows affected: %w", err)
	}
	return affected > 0, nil
}

// Verify interface compliance
var _ database.PhotoWriter = (*PhotoRepository)(nil)
