// Package facematch implements face descriptor matching and the upload
// decision rules used by the partner photo endpoints.
package facematch

// FaceDescriptor is a face embedding produced by the external face service.
// The matcher treats it as an opaque fixed-length vector.
type FaceDescriptor []float32

// PhotoRecord is a candidate photo considered during matching. Partner
// display fields are denormalized by the storage layer so a match can be
// enriched without another lookup.
type PhotoRecord struct {
	ID             string
	PartnerID      string
	Descriptor     FaceDescriptor
	PartnerName    string
	PartnerPicture string
	Flagged        bool
}

// FaceMatch is a single photo whose descriptor matched the query.
// Similarity is the full-precision value used for thresholding and sorting;
// Confidence is the rounded percentage shown to users.
type FaceMatch struct {
	PhotoID    string  `json:"photo_id"`
	PartnerID  string  `json:"partner_id"`
	Similarity float64 `json:"similarity"`
	Confidence int     `json:"confidence"`
}

// PartnerMatch is a FaceMatch enriched with partner display data.
type PartnerMatch struct {
	FaceMatch
	PartnerName    string `json:"partner_name"`
	PartnerPicture string `json:"partner_picture,omitempty"`
	Flagged        bool   `json:"flagged"`
}

// DecisionType represents the outcome of an upload check.
type DecisionType string

const (
	DecisionProceed           DecisionType = "proceed"             // Accept the upload silently
	DecisionWarnSamePerson    DecisionType = "warn_same_person"    // Photo may not show the chosen partner
	DecisionWarnOtherPartners DecisionType = "warn_other_partners" // Photo resembles a different partner
	DecisionCreateNew         DecisionType = "create_new"          // No partner chosen, offer to create one
)

// EnrichMatches attaches partner display data from candidate records to
// matches. Records missing from the lookup leave the display fields zeroed.
func EnrichMatches(matches []FaceMatch, records []PhotoRecord) []PartnerMatch {
	byID := make(map[string]PhotoRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	enriched := make([]PartnerMatch, 0, len(matches))
	for _, m := range matches {
		pm := PartnerMatch{FaceMatch: m}
		if r, ok := byID[m.PhotoID]; ok {
			pm.PartnerName = r.PartnerName
			pm.PartnerPicture = r.PartnerPicture
			pm.Flagged = r.Flagged
		}
		enriched = append(enriched, pm)
	}
	return enriched
}
