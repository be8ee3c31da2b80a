package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Web      WebConfig
	FaceAPI  FaceAPIConfig
	Database DatabaseConfig
	Matching MatchingConfig
}

type WebConfig struct {
	APIKey string // X-API-Key expected from clients; empty disables auth
}

type FaceAPIConfig struct {
	URL     string // Base URL of the face detection service
	Timeout int    // Request timeout in seconds (default 30)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// MatchingConfig holds the matching thresholds. Defaults come from the
// embedded thresholds.yaml; environment variables override them.
type MatchingConfig struct {
	MinConfidence  float64 `yaml:"min_confidence"`
	DescriptorDim  int     `yaml:"descriptor_dim"`
	CandidateLimit int     `yaml:"candidate_limit"`
}

type thresholdsFile struct {
	Matching MatchingConfig `yaml:"matching"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var thresholds thresholdsFile
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	return &Config{
		Web: WebConfig{
			APIKey: os.Getenv("WEB_API_KEY"),
		},
		FaceAPI: FaceAPIConfig{
			URL:     os.Getenv("FACE_API_URL"),
			Timeout: envInt("FACE_API_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Matching: MatchingConfig{
			MinConfidence:  envFloat("MATCH_MIN_CONFIDENCE", thresholds.Matching.MinConfidence),
			DescriptorDim:  envInt("MATCH_DESCRIPTOR_DIM", thresholds.Matching.DescriptorDim),
			CandidateLimit: envInt("MATCH_CANDIDATE_LIMIT", thresholds.Matching.CandidateLimit),
		},
	}
}
