package facematch

import (
	"errors"
	"math"
	"sort"
)

// DefaultMinConfidence is the confidence floor (percent) used when the
// caller does not provide one.
const DefaultMinConfidence = 90.0

// ErrEmptyDescriptor is returned when the query descriptor has no elements.
var ErrEmptyDescriptor = errors.New("empty face descriptor")

// Matcher compares a query descriptor against candidate photos.
// It is stateless apart from the configured confidence floor.
type Matcher struct {
	minConfidence float64
}

// NewMatcher creates a matcher with the given confidence floor (percent).
// Values <= 0 fall back to DefaultMinConfidence.
func NewMatcher(minConfidence float64) *Matcher {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Matcher{minConfidence: minConfidence}
}

// MinConfidence returns the configured confidence floor.
func (m *Matcher) MinConfidence() float64 {
	return m.minConfidence
}

// EuclideanDistance computes the L2 distance between two descriptors.
// Both descriptors must have the same length.
func EuclideanDistance(a, b FaceDescriptor) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// distanceToSimilarity converts a Euclidean distance to a similarity in [0, 1].
// Distances >= 1 clamp to zero similarity.
func distanceToSimilarity(distance float64) float64 {
	return math.Max(0, 1-math.Min(distance, 1))
}

// FindMatches compares the query descriptor against all candidates and
// returns matches at or above the confidence floor, sorted by descending
// similarity (stable, so candidate order breaks ties).
//
// Candidates without a descriptor are skipped silently. Candidates whose
// descriptor length differs from the query are skipped and counted; the
// count is returned so callers can log model drift.
func (m *Matcher) FindMatches(query FaceDescriptor, candidates []PhotoRecord) ([]FaceMatch, int, error) {
	if len(query) == 0 {
		return nil, 0, ErrEmptyDescriptor
	}

	skipped := 0
	matches := []FaceMatch{}
	for _, c := range candidates {
		if len(c.Descriptor) == 0 {
			continue
		}
		if len(c.Descriptor) != len(query) {
			skipped++
			continue
		}

		similarity := distanceToSimilarity(EuclideanDistance(query, c.Descriptor))
		confidence := similarity * 100
		if confidence < m.minConfidence {
			continue
		}

		matches = append(matches, FaceMatch{
			PhotoID:    c.ID,
			PartnerID:  c.PartnerID,
			Similarity: similarity,
			Confidence: int(math.Round(confidence)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	return matches, skipped, nil
}
