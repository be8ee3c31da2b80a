// Package faceapi is the HTTP client for the external face detection
// service that turns an image into a face descriptor.
package faceapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Sentinel errors for detection outcomes the caller must distinguish.
var (
	ErrNoFace        = errors.New("no face detected")
	ErrMultipleFaces = errors.New("multiple faces detected")
	ErrLowConfidence = errors.New("face detection confidence too low")
)

// Descriptor is the result of a successful single-face detection.
type Descriptor struct {
	Values   []float32
	DetScore float64
	Model    string
}

// Client talks to the face detection service.
type Client struct {
	baseURL     string
	minDetScore float64
	httpClient  *http.Client
}

// NewClient creates a face API client. Detections scoring below
// minDetScore are rejected with ErrLowConfidence.
func NewClient(baseURL string, timeout time.Duration, minDetScore float64) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("face API URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid face API URL: %w", err)
	}

	return &Client{
		baseURL:     parsed.String(),
		minDetScore: minDetScore,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

type detectRequest struct {
	Image string `json:"image"` // base64-encoded image bytes
}

type detectResponse struct {
	Model string `json:"model"`
	Faces []struct {
		Descriptor []float32 `json:"descriptor"`
		DetScore   float64   `json:"det_score"`
	} `json:"faces"`
}

// ExtractDescriptor sends an image to the detection service and returns
// the descriptor of the single face it contains. Images with zero or more
// than one face, or a low-confidence detection, return a sentinel error.
func (c *Client) ExtractDescriptor(ctx context.Context, image []byte) (*Descriptor, error) {
	resp, err := c.detect(ctx, image)
	if err != nil {
		return nil, err
	}

	if len(resp.Faces) == 0 {
		return nil, ErrNoFace
	}
	if len(resp.Faces) > 1 {
		return nil, fmt.Errorf("%w: got %d", ErrMultipleFaces, len(resp.Faces))
	}

	face := resp.Faces[0]
	if face.DetScore < c.minDetScore {
		return nil, fmt.Errorf("%w: score %.2f below %.2f", ErrLowConfidence, face.DetScore, c.minDetScore)
	}
	if len(face.Descriptor) == 0 {
		return nil, errors.New("face service returned empty descriptor")
	}

	return &Descriptor{
		Values:   face.Descriptor,
		DetScore: face.DetScore,
		Model:    resp.Model,
	}, nil
}

// detect performs the POST request against the detection endpoint.
func (c *Client) detect(ctx context.Context, image []byte) (*detectResponse, error) {
	payload, err := json.Marshal(detectRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/detect", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face service returned status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	var result detectResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return &result, nil
}

// readErrorBody reads up to 1 KB of an error response body for messages.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil || len(body) == 0 {
		return "(no body)"
	}
	return string(body)
}
