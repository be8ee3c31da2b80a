package database

// Matching query limits
const (
	// DefaultCandidateLimit caps the number of candidate photos loaded
	// for a single matching request when no limit is configured.
	DefaultCandidateLimit = 500

	// MinDetScore is the minimum detection confidence from the face
	// service for a descriptor to be stored. Lower scores usually mean
	// a partial or occluded face and produce unreliable matches.
	MinDetScore = 0.5
)
