package database

import (
	"time"

	"github.com/amora-app/backend/internal/facematch"
)

// Partner represents a partner record owned by a user.
type Partner struct {
	ID         string
	Name       string
	PictureURL string
	Flagged    bool
	CreatedAt  time.Time

	// PhotoCount is populated by list queries, not stored.
	PhotoCount int
}

// StoredPhoto represents a partner photo stored in the database.
// Descriptor is nil when the face service has not produced one yet.
type StoredPhoto struct {
	ID         string
	PartnerID  string
	Descriptor []float32
	Model      string  // Face model that produced the descriptor
	DetScore   float64 // Detection confidence from the face service
	FileKey    string  // Storage key of the original image
	CreatedAt  time.Time

	// Denormalized partner data populated by JOIN queries.
	PartnerName    string
	PartnerPicture string
	PartnerFlagged bool
}

// PhotoRecords converts stored photos to matching candidates.
func PhotoRecords(photos []StoredPhoto) []facematch.PhotoRecord {
	records := make([]facematch.PhotoRecord, 0, len(photos))
	for _, p := range photos {
		records = append(records, facematch.PhotoRecord{
			ID:             p.ID,
			PartnerID:      p.PartnerID,
			Descriptor:     p.Descriptor,
			PartnerName:    p.PartnerName,
			PartnerPicture: p.PartnerPicture,
			Flagged:        p.PartnerFlagged,
		})
	}
	return records
}
